package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/resmod/resmod/pkg/derive"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model.json> [model.json...]",
		Short: "Validate model documents without deriving schemas",
		Long: `Validate model documents: format detection, document structure, shape
kinds, reference resolution, and trait consistency. No schemas are derived
and nothing is written.`,
		Example: `  # Validate a Smithy model
  resmod validate ./models/ec2.json

  # Validate several documents
  resmod validate ./models/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deriver := derive.New()

			failed := 0
			type report struct {
				Path   string `json:"path"`
				Format string `json:"format,omitempty"`
				Shapes int    `json:"shapes,omitempty"`
				Error  string `json:"error,omitempty"`
			}
			reports := make([]report, 0, len(args))

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				table, format, err := deriver.LoadAndResolve(ctx, data)
				r := report{Path: path, Format: format}
				if err != nil {
					r.Error = err.Error()
					failed++
					log.Error().Str("path", path).Err(err).Msg("Validation failed")
				} else {
					r.Shapes = table.Len()
					log.Info().
						Str("path", path).
						Str("format", format).
						Int("shapes", table.Len()).
						Msg("Document is valid")
				}
				reports = append(reports, r)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
			}
			return nil
		},
	}

	return cmd
}
