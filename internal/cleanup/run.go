package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Step identifies which phase of Run produced an Action.
type Step int

const (
	StepDirectories Step = iota + 1
	StepFiles
	StepRecursive
)

// Action is one deletion, performed or (in dry-run mode) planned.
type Action struct {
	Step Step
	Path string
	Dir  bool
}

// ItemError records a deletion that failed. Run continues past it.
type ItemError struct {
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Report summarizes a Run.
type Report struct {
	Root    string
	DryRun  bool
	Actions []Action
	Skipped []string
	Errors  []ItemError
}

// Options tunes Run. A nil Logger discards log output.
type Options struct {
	DryRun bool
	Logger *slog.Logger
}

// Run executes plan against root in three steps: listed top-level
// directories, listed top-level files, then a top-down walk that removes
// recursive targets without entering protected directories. Missing targets
// are skipped silently. Only an unusable root or plan aborts the run.
func Run(root string, plan Plan, opts Options) (Report, error) {
	if err := plan.Validate(); err != nil {
		return Report{}, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Report{}, fmt.Errorf("resolve root %q: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Report{}, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return Report{}, fmt.Errorf("root %s is not a directory", absRoot)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &runner{
		root:    absRoot,
		plan:    plan,
		dryRun:  opts.DryRun,
		logger:  logger,
		report:  Report{Root: absRoot, DryRun: opts.DryRun},
		planned: make(map[string]bool),
	}

	r.deleteTopLevel(StepDirectories, plan.Directories, true)
	r.deleteTopLevel(StepFiles, plan.Files, false)
	r.walk()

	return r.report, nil
}

type runner struct {
	root   string
	plan   Plan
	dryRun bool
	logger *slog.Logger
	report Report

	// planned holds paths a dry run would already have removed, so the walk
	// does not report them or their contents a second time.
	planned map[string]bool
}

func (r *runner) deleteTopLevel(step Step, entries []string, wantDir bool) {
	for _, entry := range entries {
		rel := filepath.Clean(entry)
		if r.plan.isProtected(filepath.Dir(rel)) || (wantDir && r.plan.isProtected(rel)) {
			r.report.Skipped = append(r.report.Skipped, filepath.Join(r.root, rel))
			r.logger.Warn("skipping protected target", "path", rel)
			continue
		}

		target := filepath.Join(r.root, rel)
		info, err := os.Lstat(target)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.fail(target, err)
			}
			continue
		}

		if wantDir && info.IsDir() {
			r.remove(step, target, true)
		} else if !wantDir && info.Mode().IsRegular() {
			r.remove(step, target, false)
		}
	}
}

func (r *runner) walk() {
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			r.fail(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == r.root {
			return nil
		}

		rel, relErr := filepath.Rel(r.root, path)
		if relErr != nil {
			r.fail(path, relErr)
			return nil
		}

		if d.IsDir() {
			if r.planned[path] || r.plan.isProtected(rel) {
				return fs.SkipDir
			}
			if r.plan.isRecursiveDir(d.Name()) {
				r.remove(StepRecursive, path, true)
				return fs.SkipDir
			}
			return nil
		}

		if !r.planned[path] && d.Type().IsRegular() && r.plan.hasRecursiveExtension(d.Name()) {
			r.remove(StepRecursive, path, false)
		}
		return nil
	})
	if err != nil {
		r.fail(r.root, err)
	}
}

func (r *runner) remove(step Step, path string, dir bool) {
	action := Action{Step: step, Path: path, Dir: dir}

	if r.dryRun {
		r.logger.Info("would delete", "path", path, "dir", dir)
		r.planned[path] = true
		r.report.Actions = append(r.report.Actions, action)
		return
	}

	var err error
	if dir {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		r.fail(path, err)
		return
	}

	r.logger.Info("deleted", "path", path, "dir", dir)
	r.report.Actions = append(r.report.Actions, action)
}

func (r *runner) fail(path string, err error) {
	r.logger.Error("cleanup item failed", "path", path, "error", err)
	r.report.Errors = append(r.report.Errors, ItemError{Path: path, Err: err})
}
