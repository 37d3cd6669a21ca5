package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hannes/pii-extract/pii"
)

var redactCmd = &cobra.Command{
	Use:   "redact <file.md> <findings.jsonl>",
	Short: "Redact a markdown file using extracted findings",
	Long: `Redact a markdown file using a findings JSONL file produced by the
extract command. The result is written to <name>.redacted.md.

Modes:
  blackout    - replace each private value with black circles (default)
  substitute  - replace each private value with a realistic dummy value

Examples:
  pii-extract redact report.md report.jsonl
  pii-extract redact report.md report.jsonl --mode substitute`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")

		var mode pii.RedactMode
		switch modeFlag {
		case "", string(pii.RedactModeBlackout):
			mode = pii.RedactModeBlackout
		case string(pii.RedactModeSubstitute):
			mode = pii.RedactModeSubstitute
		default:
			return fmt.Errorf("invalid mode %q: must be 'blackout' or 'substitute'", modeFlag)
		}

		redactor := pii.NewRedactor(pii.NewGeneratorService())
		if mode == pii.RedactModeSubstitute {
			store := pii.NewStoreFromConfig(cfg.Database)
			defer store.Close()
			redactor.SetStore(store)
		}

		outputPath, err := redactor.RedactFile(cmd.Context(), args[0], args[1], mode)
		if err != nil {
			reportError(err)
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("Redacted document written to %s", outputPath)))
		return nil
	},
}

func init() {
	redactCmd.Flags().String("mode", "blackout", "Redaction mode (blackout or substitute)")
	rootCmd.AddCommand(redactCmd)
}
