package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/cmd/vexc/internal/ui"
)

func newCompileCommand() *cobra.Command {
	var (
		mode    string
		outDir  string
		noCache bool
		diff    bool
		stdout  bool
	)

	cmd := &cobra.Command{
		Use:   "compile [files or directories...]",
		Short: "Compile templates into render functions",
		Long: `Compile templates into render functions. Each template is written next to
its source as <name>.render.js, or under --out-dir when set. Without arguments
the include paths from vexc.yaml are compiled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if mode != "" {
				cfg.Compiler.Mode = mode
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			b, err := newBuilder(cfg, !noCache)
			if err != nil {
				return err
			}
			defer b.Close()
			b.diff = diff

			if len(args) == 0 {
				args = cfg.Include
			}
			files, err := b.collect(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				log.Printf("⚠️  No %s templates found", cfg.Extension)
				return nil
			}

			if stdout {
				return printOutputs(cmd, b, files)
			}
			return runCompile(cmd, b, files)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Output mode: function or module (overrides vexc.yaml)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write outputs under this directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the compile cache")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show how each rewritten output changed")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print render functions instead of writing files")

	return cmd
}

func runCompile(cmd *cobra.Command, b *builder, files []string) error {
	start := time.Now()
	log.Printf("📦 Compiling %d templates...", len(files))

	var summary ui.Summary
	out := cmd.OutOrStdout()
	for _, file := range files {
		result, err := b.build(file)
		if err != nil {
			summary.Failed++
			fmt.Fprintln(out, ui.Failure("%v", err))
			continue
		}

		switch {
		case result.Unchanged:
			summary.Skipped++
		case result.Cached:
			summary.Cached++
			fmt.Fprintln(out, ui.Success("%s → %s %s", result.Source, result.Output, ui.Muted("(cached)")))
		default:
			summary.Compiled++
			fmt.Fprintln(out, ui.Success("%s → %s", result.Source, result.Output))
		}
		if len(result.Diff) > 0 {
			fmt.Fprint(out, ui.RenderDiff(result.Output, result.Diff))
		}
	}

	summary.Elapsed = time.Since(start).Round(time.Millisecond).String()
	fmt.Fprintln(out, ui.RenderSummary(summary))

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d templates failed to compile", summary.Failed, len(files))
	}
	return nil
}

func printOutputs(cmd *cobra.Command, b *builder, files []string) error {
	out := cmd.OutOrStdout()
	for i, file := range files {
		result, err := b.compile(file)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "// %s\n%s", file, result.Code)
	}
	return nil
}
