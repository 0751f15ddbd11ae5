package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/docnest/internal/cleanup"
)

var (
	headerStyle  = color.New(color.Bold)
	deleteStyle  = color.New(color.FgRed)
	planStyle    = color.New(color.FgYellow)
	skipStyle    = color.New(color.FgCyan)
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed, color.Bold)
)

type options struct {
	root       string
	configPath string
	dryRun     bool
	yes        bool
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "docnest-cleanup",
		Short: "Delete leftover backend files from a DocNest project tree",
		Long: `docnest-cleanup permanently removes backend directories, files, and
recursive artifacts (such as __pycache__ and .py files) from a project root.
Protected directories such as the Flutter app, .git, and platform folders
are never entered.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(opts, in, out, errOut)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.Flags().StringVar(&opts.root, "root", ".", "project root to clean")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML file overriding the default cleanup plan")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list what would be deleted without deleting")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(newPrintConfigCmd(out))
	return cmd
}

func newPrintConfigCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print the default cleanup plan as TOML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return cleanup.WritePlan(out, cleanup.DefaultPlan())
		},
	}
}

func runCleanup(opts *options, in io.Reader, out, errOut io.Writer) error {
	plan := cleanup.DefaultPlan()
	if opts.configPath != "" {
		loaded, err := cleanup.LoadPlan(opts.configPath)
		if err != nil {
			errorStyle.Fprintf(errOut, "Error: %v\n", err)
			return err
		}
		plan = loaded
	}

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return err
	}

	headerStyle.Fprintf(out, "Cleaning backend artifacts in: %s\n", root)
	if !opts.dryRun && !opts.yes {
		if !confirm(in, out) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	report, err := cleanup.Run(root, plan, cleanup.Options{DryRun: opts.dryRun})
	if err != nil {
		errorStyle.Fprintf(errOut, "Error: %v\n", err)
		return err
	}

	printReport(out, errOut, report)

	if len(report.Errors) > 0 {
		return fmt.Errorf("%d item(s) could not be deleted", len(report.Errors))
	}
	return nil
}

// confirm asks for an explicit "y" or "yes" before anything is deleted.
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "This permanently deletes backend files and folders. Continue? [y/N] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printReport(out, errOut io.Writer, report cleanup.Report) {
	verb, style := "Deleted", deleteStyle
	if report.DryRun {
		verb, style = "Would delete", planStyle
	}

	for _, a := range report.Actions {
		kind := "file"
		if a.Dir {
			kind = "directory"
		}
		style.Fprintf(out, "%s %s: %s\n", verb, kind, a.Path)
	}
	for _, p := range report.Skipped {
		skipStyle.Fprintf(out, "Skipped protected: %s\n", p)
	}
	for _, e := range report.Errors {
		errorStyle.Fprintf(errOut, "Error deleting %s: %v\n", e.Path, e.Err)
	}

	summary := fmt.Sprintf("%d item(s)", len(report.Actions))
	if report.DryRun {
		successStyle.Fprintf(out, "Dry run complete: %s would be deleted.\n", summary)
		return
	}
	successStyle.Fprintf(out, "Cleanup complete: %s deleted.\n", summary)
}
