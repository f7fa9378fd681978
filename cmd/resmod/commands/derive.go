package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/resmod/resmod/pkg/cloudschema"
	"github.com/resmod/resmod/pkg/derive"
	"github.com/resmod/resmod/pkg/registry"
	"github.com/resmod/resmod/pkg/telemetry"
)

func newDeriveCommand() *cobra.Command {
	var (
		out       string
		storePath string
		watch     bool
		workers   int
		aliases   []string
		metrics   string
	)

	cmd := &cobra.Command{
		Use:   "derive <model.json> [model.json...]",
		Short: "Derive resource schemas from model documents",
		Long: `Derive canonical resource schemas from one or more model documents.

Documents may be Smithy JSON AST models or cloud resource schema documents;
the format is detected per document. All documents are merged into one
derivation run, so cross-document references resolve and duplicate resource
types are reported.`,
		Example: `  # Derive schemas from one document
  resmod derive ./models/ec2-vpc.json

  # Derive from several documents and persist the result
  resmod derive --store ./resmod.db ./models/*.json

  # Register an ergonomic enum alias and re-derive on changes
  resmod derive --alias 'IpProtocol=all:-1' --watch ./models/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cloudLoader := cloudschema.NewLoader()
			for _, spec := range aliases {
				property, alias, canonical, err := parseAlias(spec)
				if err != nil {
					return err
				}
				cloudLoader.AddAlias(property, alias, canonical)
			}

			deriver := derive.New(
				derive.WithWorkers(workers),
				derive.WithCloudLoader(cloudLoader),
			)

			tel, err := setupTelemetry(metrics)
			if err != nil {
				return err
			}
			defer func() { _ = tel.Shutdown(context.Background()) }()
			ctx = tel.WithContext(ctx)

			runOnce := func(ctx context.Context) error {
				return deriveOnce(ctx, deriver, args, out, storePath)
			}

			if err := runOnce(ctx); err != nil {
				// In watch mode a bad document is reported and waited out,
				// not fatal.
				if !watch {
					return err
				}
				log.Error().Err(err).Msg("Derivation failed")
			}

			if !watch {
				return nil
			}

			watcher := derive.NewWatcher()
			return watcher.Watch(ctx, args, func() {
				if err := runOnce(ctx); err != nil {
					log.Error().Err(err).Msg("Derivation failed")
				}
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path for derived schemas ('-' for stdout)")
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store path to persist schemas and run records")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch documents and re-derive on change")
	cmd.Flags().IntVar(&workers, "workers", 0, "max documents loaded concurrently (default 4)")
	cmd.Flags().StringArrayVar(&aliases, "alias", nil, "enum alias as 'Property=alias:canonical' (repeatable)")
	cmd.Flags().StringVar(&metrics, "metrics-listen", "", "expose Prometheus metrics on this address")

	return cmd
}

func deriveOnce(ctx context.Context, deriver *derive.Deriver, paths []string, out, storePath string) error {
	documents := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		documents = append(documents, data)
	}

	started := time.Now()
	result, err := deriver.Run(ctx, documents)
	if err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Warn().
				Str("code", string(e.Code)).
				Str("resource", e.Resource).
				Str("attribute", e.Attribute).
				Msg(e.Message)
		}
		// Schemas with unresolved defects never reach consumers: the run is
		// recorded for diagnostics, its output is not written or stored.
		if storePath != "" {
			if err := recordFailedRun(ctx, storePath, result, len(documents), started); err != nil {
				return err
			}
		}
		return result.Errors
	}

	if err := writeResult(result, out); err != nil {
		return err
	}

	if storePath != "" {
		if err := persistResult(ctx, storePath, result, len(documents), started); err != nil {
			return err
		}
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("format", result.Format).
		Int("schemas", result.Set.Len()).
		Dur("duration", result.Duration).
		Msg("Derivation completed")

	return nil
}

func writeResult(result *derive.Result, out string) error {
	data, err := json.MarshalIndent(result.Set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schemas: %w", err)
	}
	data = append(data, '\n')

	if out == "-" || out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

func persistResult(ctx context.Context, storePath string, result *derive.Result, documents int, started time.Time) error {
	store, err := openStore(ctx, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	run := &registry.DerivationRun{
		ID:             result.RunID,
		Format:         result.Format,
		Documents:      documents,
		Status:         registry.RunStatusRunning,
		SchemasDerived: result.Set.Len(),
		ErrorCount:     len(result.Errors),
		StartedAt:      started,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		return err
	}

	for _, rs := range result.Set.Resources {
		doc, err := json.Marshal(rs)
		if err != nil {
			return fmt.Errorf("failed to encode schema %s: %w", rs.TypeName, err)
		}
		stored := &registry.StoredSchema{
			TypeName:     rs.TypeName,
			UpstreamType: rs.UpstreamType,
			Format:       result.Format,
			RunID:        result.RunID,
			Document:     string(doc),
		}
		if err := store.UpsertSchema(ctx, stored); err != nil {
			return err
		}
	}

	return store.UpdateRunStatus(ctx, result.RunID, registry.RunStatusCompleted, result.Set.Len(), 0, nil)
}

// recordFailedRun stores the run record of a derivation that completed with
// collected errors. No schemas are stored for such a run.
func recordFailedRun(ctx context.Context, storePath string, result *derive.Result, documents int, started time.Time) error {
	store, err := openStore(ctx, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	msg := result.Errors.Error()
	run := &registry.DerivationRun{
		ID:          result.RunID,
		Format:      result.Format,
		Documents:   documents,
		Status:      registry.RunStatusFailed,
		ErrorCount:  len(result.Errors),
		Error:       &msg,
		StartedAt:   started,
		CompletedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return store.CreateRun(ctx, run)
}

// parseAlias splits an alias spec of the form "Property=alias:canonical".
func parseAlias(spec string) (property, alias, canonical string, err error) {
	property, rest, ok := strings.Cut(spec, "=")
	if ok {
		alias, canonical, ok = strings.Cut(rest, ":")
	}
	if !ok || property == "" || alias == "" || canonical == "" {
		return "", "", "", fmt.Errorf("invalid alias %q (expected 'Property=alias:canonical')", spec)
	}
	return property, alias, canonical, nil
}

func setupTelemetry(metricsListen string) (*telemetry.Telemetry, error) {
	cfg := telemetry.DefaultConfig()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if metricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddress = metricsListen
	}

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return nil, err
	}
	if err := tel.StartMetricsServer(); err != nil {
		return nil, err
	}
	return tel, nil
}
