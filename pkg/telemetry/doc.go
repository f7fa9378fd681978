// Package telemetry provides observability instrumentation for resmod.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry), and metrics (Prometheus) into a unified system for
// monitoring and debugging derivation runs.
//
// # Architecture
//
// The telemetry system is built on three pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for operational insights
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "resmod"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context
// propagation:
//
//	logger := tel.Logger.NewComponentLogger("derive")
//	logger = logger.WithRunID("run-123").WithFormat("smithy")
//	logger.Info("Starting derivation run")
//	logger.WithError(err).Error("Derivation failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into pipeline flow and performance:
//
//	ctx, span := tel.Tracer.Start(ctx, "derive.resolve")
//	defer span.End()
//
//	span.SetAttributes(
//	    telemetry.AttrShapeCount.Int(table.Len()),
//	)
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Key metrics exposed:
//
//   - resmod_runs_started_total{format}
//   - resmod_runs_completed_total{status}
//   - resmod_run_duration_seconds{status}
//   - resmod_stage_duration_seconds{stage}
//   - resmod_models_loaded_total{format}
//   - resmod_shapes_resolved_total
//   - resmod_schemas_derived_total
//   - resmod_attributes_derived_total
//   - resmod_derivation_errors_total{code}
//   - resmod_active_runs
//   - resmod_stored_schemas
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics)
//
// # Context Helpers
//
// High-level helpers simplify common instrumentation patterns:
//
//	// Run context
//	ctx = telemetry.WithRunContext(ctx, runID, format)
//	defer telemetry.EndRunContext(ctx, status, err)
//
//	// Pipeline stage
//	err := telemetry.RecordStageOperation(ctx, "extract", func(ctx context.Context) error {
//	    return extractAll(ctx, table)
//	})
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	// Development (verbose logging, stdout traces, full sampling)
//	cfg := telemetry.DevelopmentConfig()
//
//	// Production (JSON logs, OTLP traces, 10% sampling)
//	cfg := telemetry.ProductionConfig()
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending data:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("Telemetry shutdown error: %v", err)
//	}
package telemetry
