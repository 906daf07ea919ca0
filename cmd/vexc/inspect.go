package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/pkg/compiler/ast"
	"github.com/recera/vexc/pkg/compiler/parser"
	"github.com/recera/vexc/pkg/compiler/transform"
)

func newInspectCommand() *cobra.Command {
	var parseOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the compiler tree of a template as YAML",
		Long: `Print the intermediate tree of a template as YAML. By default the tree is
shown after the transform passes, with codegen nodes and the helpers, assets
and hoists the emitter would use. --parse shows the tree straight from the parser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts, err := cfg.CompilerOptions()
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			return inspect(cmd.OutOrStdout(), args[0], string(src), opts.Parser, opts.Transform, parseOnly)
		},
	}

	cmd.Flags().BoolVar(&parseOnly, "parse", false, "Stop after parsing")
	return cmd
}

func inspect(w io.Writer, filename, src string, popts parser.Options, topts transform.Options, parseOnly bool) error {
	root, err := parser.Parse(filename, src, popts)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	if !parseOnly {
		ctx := transform.Transform(root, topts)
		if errs := ctx.Errors(); len(errs) > 0 {
			return fmt.Errorf("%s: %w", filename, errors.Join(errs...))
		}

		helpers := make([]string, 0, len(ctx.Helpers()))
		for _, h := range ctx.Helpers() {
			helpers = append(helpers, h.Name())
		}
		hoists := make([]any, 0, len(ctx.Hoists))
		for _, h := range ctx.Hoists {
			hoists = append(hoists, ast.Dump(h))
		}

		doc["helpers"] = helpers
		doc["components"] = ctx.Components.Items()
		doc["directives"] = ctx.Directives.Items()
		doc["hoists"] = hoists
	}

	doc["ast"] = ast.Dump(root)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
