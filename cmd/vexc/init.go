package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/cmd/vexc/internal/ui"
)

var initQuestions = []ui.Question{
	{
		Key:    "mode",
		Prompt: "How should render functions be emitted?",
		Choices: []ui.Choice{
			{Label: "Function body reading helpers from a global", Value: "function"},
			{Label: "ES module importing helpers", Value: "module"},
		},
	},
	{
		Key:    "whitespace",
		Prompt: "How should template whitespace be handled?",
		Choices: []ui.Choice{
			{Label: "Condense", Value: "condense"},
			{Label: "Preserve", Value: "preserve"},
		},
	},
	{
		Key:    "hoist",
		Prompt: "Hoist static elements out of render?",
		Choices: []ui.Choice{
			{Label: "Yes", Value: "true"},
			{Label: "No", Value: "false"},
		},
	},
	{
		Key:    "cache",
		Prompt: "Cache compiled output between runs?",
		Choices: []ui.Choice{
			{Label: "Yes", Value: "true"},
			{Label: "No", Value: "false"},
		},
	},
}

func newInitCommand() *cobra.Command {
	var yes, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + config.FileName + " in the project directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(config.FileName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
			}

			cfg := config.DefaultConfig()
			if !yes {
				wizard, err := ui.RunWizard(initQuestions, answersFrom(cfg))
				if err != nil {
					return err
				}
				if !wizard.Done() {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("Cancelled, nothing written"))
					return nil
				}
				if err := applyAnswers(cfg, wizard.Answers()); err != nil {
					return err
				}
			}

			if err := config.Save(cfg, "."); err != nil {
				return fmt.Errorf("failed to write %s: %w", config.FileName, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Wrote %s", config.FileName))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+config.FileName)
	return cmd
}

func answersFrom(cfg *config.Config) map[string]string {
	return map[string]string{
		"mode":       cfg.Compiler.Mode,
		"whitespace": cfg.Compiler.Whitespace,
		"hoist":      strconv.FormatBool(cfg.Compiler.HoistStatic == nil || *cfg.Compiler.HoistStatic),
		"cache":      strconv.FormatBool(cfg.CacheEnabled()),
	}
}

func applyAnswers(cfg *config.Config, answers map[string]string) error {
	if v, ok := answers["mode"]; ok {
		cfg.Compiler.Mode = v
	}
	if v, ok := answers["whitespace"]; ok {
		cfg.Compiler.Whitespace = v
	}
	for _, b := range []struct {
		key string
		dst **bool
	}{
		{"hoist", &cfg.Compiler.HoistStatic},
		{"cache", &cfg.Cache.Enabled},
	} {
		v, ok := answers[b.key]
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = &parsed
	}
	return cfg.Validate()
}
