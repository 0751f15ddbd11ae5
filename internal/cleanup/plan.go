// Package cleanup removes leftover backend artifacts from a project tree
// while never touching protected directories.
package cleanup

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPlan is wrapped by every Plan validation failure.
var ErrInvalidPlan = errors.New("invalid cleanup plan")

// Plan lists what Run deletes. Directories and Files are relative to the root.
// RecursiveDirs and RecursiveExtensions match by name anywhere in the tree.
// Protected entries are directory names or doublestar patterns matched
// against the slash-separated path relative to the root; Run never enters or
// deletes a protected directory.
type Plan struct {
	Directories         []string `toml:"directories"`
	Files               []string `toml:"files"`
	RecursiveDirs       []string `toml:"recursive_dirs"`
	RecursiveExtensions []string `toml:"recursive_extensions"`
	Protected           []string `toml:"protected"`
}

// DefaultPlan returns the plan for removing a Django backend that shares a
// root with a Flutter frontend.
func DefaultPlan() Plan {
	return Plan{
		Directories:         []string{"docnest_api", "users", "documents", "notes", "passwords", "venv", "env"},
		Files:               []string{"manage.py", "db.sqlite3", "requirements.txt"},
		RecursiveDirs:       []string{"__pycache__", "migrations"},
		RecursiveExtensions: []string{".py"},
		Protected: []string{
			"docnest",
			".git", ".idea", ".vscode",
			"build", "android", "ios", "web", "linux", "macos", "windows",
		},
	}
}

// LoadPlan overlays the TOML file at path on DefaultPlan. Keys present in the
// file replace the default list; absent keys keep it. Unknown keys are an error.
func LoadPlan(path string) (Plan, error) {
	plan := DefaultPlan()

	md, err := toml.DecodeFile(path, &plan)
	if err != nil {
		return Plan{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Plan{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidPlan, path, strings.Join(keys, ", "))
	}

	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// WritePlan encodes plan as TOML to w.
func WritePlan(w io.Writer, plan Plan) error {
	return toml.NewEncoder(w).Encode(plan)
}

// Validate rejects entries that could reach outside the root or never match.
func (p Plan) Validate() error {
	for _, list := range [][]string{p.Directories, p.Files} {
		for _, entry := range list {
			if err := validateRelative(entry); err != nil {
				return err
			}
		}
	}

	for _, name := range p.RecursiveDirs {
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("%w: recursive dir %q must be a plain name", ErrInvalidPlan, name)
		}
	}

	for _, ext := range p.RecursiveExtensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("%w: extension %q must look like \".py\"", ErrInvalidPlan, ext)
		}
	}

	for _, pattern := range p.Protected {
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: protected pattern %q is not valid", ErrInvalidPlan, pattern)
		}
	}

	return nil
}

func validateRelative(entry string) error {
	if entry == "" || filepath.IsAbs(entry) {
		return fmt.Errorf("%w: %q must be a non-empty relative path", ErrInvalidPlan, entry)
	}
	cleaned := path.Clean(filepath.ToSlash(entry))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q escapes the root", ErrInvalidPlan, entry)
	}
	return nil
}

// isProtected reports whether the directory at rel (slash-separated,
// relative to the root) matches a protected entry. Any protected ancestor
// also protects rel.
func (p Plan) isProtected(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	if rel == "." {
		return false
	}

	segments := strings.Split(rel, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		for _, pattern := range p.Protected {
			if pattern == segments[i] {
				return true
			}
			if ok, _ := doublestar.Match(pattern, prefix); ok {
				return true
			}
		}
	}
	return false
}

func (p Plan) isRecursiveDir(name string) bool {
	for _, d := range p.RecursiveDirs {
		if d == name {
			return true
		}
	}
	return false
}

func (p Plan) hasRecursiveExtension(name string) bool {
	for _, ext := range p.RecursiveExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
