package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/vexc/pkg/compiler"
	"github.com/recera/vexc/pkg/compiler/transform"
)

var (
	version = compiler.Version
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cwd string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "vexc",
		Short: "vexc - template to render function compiler",
		Long: `vexc compiles HTML templates with Vue-style directives into render
functions that build virtual DOM nodes through a small runtime.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			if verbose {
				transform.SetDebugLog(func(args ...interface{}) {
					fmt.Fprintln(os.Stderr, args...)
				})
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cwd, "cwd", "", "Project directory (defaults to current)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace compiler passes")

	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCacheCommand())

	return rootCmd
}
