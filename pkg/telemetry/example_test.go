package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/resmod/resmod/pkg/telemetry"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	// Create configuration
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "resmod"
	cfg.ServiceVersion = "1.0.0"

	// Initialize telemetry
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Start metrics server (non-blocking)
	if err := tel.StartMetricsServer(); err != nil {
		panic(err)
	}

	// Add telemetry to context
	ctx := tel.WithContext(context.Background())

	// Use telemetry
	logger := telemetry.FromContext(ctx)
	logger.Info("Engine started")

	// Output can vary, so we don't specify output for this example
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific logger
	logger := tel.Logger.NewComponentLogger("derive")

	// Add context fields
	logger = logger.WithRunID("run-123").WithFormat("smithy")

	// Log at different levels
	logger.Debug("Loading model document")
	logger.Info("Model resolved")
	logger.Warn("Enum alias shadows nothing")

	// Log with error
	err := fmt.Errorf("reference to undefined shape")
	logger.WithError(err).Error("Resolution failed")

	// Output varies, no output specified
}

// Example_runInstrumentation demonstrates run-level instrumentation.
func Example_runInstrumentation() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Run context starts a span and records the run-started metric
	ctx = telemetry.WithRunContext(ctx, "run-456", "cloudschema")

	// Each pipeline stage is timed and traced
	err := telemetry.RecordStageOperation(ctx, "resolve", func(ctx context.Context) error {
		time.Sleep(time.Millisecond)
		return nil
	})

	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	telemetry.EndRunContext(ctx, status, err)

	// Output varies, no output specified
}
