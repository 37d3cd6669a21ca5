package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hannes/pii-extract/pii"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.md>",
	Short: "Extract PII from a markdown file",
	Long: `Extract PII from a markdown file and write the findings as JSON Lines
next to it. The findings file takes the markdown file's name with a .jsonl
extension and must not already exist.

Examples:
  pii-extract extract report.md
  pii-extract extract report.md --labels name,email
  pii-extract extract report.md --threshold 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, _ := cmd.Flags().GetString("labels")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		output, _ := cmd.Flags().GetString("output")

		if threshold > 0 {
			cfg.Threshold = threshold
		}

		provider, err := pii.NewDetectorProvider(cfg)
		if err != nil {
			reportError(err)
			return err
		}
		defer closeProvider(provider)

		extractor := pii.NewExtractor(provider, cfg)
		if labels != "" {
			extractor.SetLabels(strings.Split(labels, ","))
		}
		extractor.Progress = renderProgress

		findingsPath, err := extractor.ExtractFileTo(cmd.Context(), args[0], output)
		if err != nil {
			reportError(err)
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("Findings written to %s", findingsPath)))
		return nil
	},
}

// closeProvider closes the provider when it owns detector resources
func closeProvider(provider pii.DetectorProvider) {
	if mm, ok := provider.(*pii.ModelManager); ok {
		if err := mm.Close(); err != nil {
			log.Printf("Warning: failed to close model manager: %v", err)
		}
	}
}

func init() {
	extractCmd.Flags().String("labels", "", "Comma-separated label override")
	extractCmd.Flags().Float64("threshold", 0, "Model query threshold override")
	extractCmd.Flags().String("output", "", "Findings file path (default: <file>.jsonl)")
	rootCmd.AddCommand(extractCmd)
}
