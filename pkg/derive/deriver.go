package derive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/resmod/resmod/pkg/cloudschema"
	"github.com/resmod/resmod/pkg/model"
	"github.com/resmod/resmod/pkg/resolve"
	"github.com/resmod/resmod/pkg/schema"
	"github.com/resmod/resmod/pkg/smithy"
	"github.com/resmod/resmod/pkg/telemetry"
)

// ModelLoader parses one model document format into a shape table.
type ModelLoader interface {
	// Format returns the loader's format name.
	Format() string

	// Load parses a model document into a shape table.
	Load(ctx context.Context, data []byte) (*model.Table, error)
}

// Pipeline stage names used in logs, metrics, and trace spans.
const (
	StageLoad     = "load"
	StageResolve  = "resolve"
	StageMerge    = "merge"
	StageAssemble = "assemble"
)

// defaultWorkers bounds concurrent document loading.
const defaultWorkers = 4

// Deriver runs derivation pipelines over model documents.
type Deriver struct {
	smithyLoader *smithy.Loader
	cloudLoader  *cloudschema.Loader
	assembler    *schema.Assembler
	workers      int
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithWorkers bounds the number of documents loaded concurrently.
func WithWorkers(n int) Option {
	return func(d *Deriver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithCloudLoader replaces the default cloud schema loader, typically to
// carry registered enum aliases.
func WithCloudLoader(l *cloudschema.Loader) Option {
	return func(d *Deriver) {
		d.cloudLoader = l
	}
}

// New creates a deriver with both built-in loaders registered.
func New(opts ...Option) *Deriver {
	d := &Deriver{
		smithyLoader: smithy.NewLoader(),
		cloudLoader:  cloudschema.NewLoader(),
		assembler:    schema.NewAssembler(),
		workers:      defaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectLoader picks the loader for a document by probing its envelope.
func (d *Deriver) DetectLoader(data []byte) (ModelLoader, error) {
	switch {
	case smithy.Detect(data):
		return d.smithyLoader, nil
	case cloudschema.Detect(data):
		return d.cloudLoader, nil
	}
	return nil, model.NewParseError("unrecognized model document format", nil)
}

// Result is the outcome of one derivation run.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Format is the detected format of the run's documents, or "mixed".
	Format string `json:"format"`

	// Set holds the derived schemas.
	Set *schema.Set `json:"set"`

	// Table is the resolved shape table the schemas were derived from.
	Table *model.Table `json:"-"`

	// Errors are the collected non-fatal derivation errors.
	Errors schema.ErrorList `json:"errors,omitempty"`

	// Duration is the wall-clock duration of the run.
	Duration time.Duration `json:"duration"`
}

// LoadAndResolve loads one model document, resolves its references, and
// merges traits. Parse errors and dangling references are fatal.
func (d *Deriver) LoadAndResolve(ctx context.Context, data []byte) (*model.Table, string, error) {
	loader, err := d.DetectLoader(data)
	if err != nil {
		return nil, "", err
	}

	var table *model.Table
	err = telemetry.RecordStageOperation(ctx, StageLoad, func(ctx context.Context) error {
		var loadErr error
		table, loadErr = loader.Load(ctx, data)
		return loadErr
	})
	if err != nil {
		return nil, loader.Format(), err
	}
	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		tel.Metrics.RecordModelLoaded(loader.Format())
	}

	if err := d.resolveTable(ctx, table); err != nil {
		return nil, loader.Format(), err
	}
	return table, loader.Format(), nil
}

// DeriveSchemas assembles the schemas of a resolved table. The returned set
// carries every schema that derived cleanly; collected extraction and
// assembly errors come back as a non-nil error alongside it.
func (d *Deriver) DeriveSchemas(ctx context.Context, table *model.Table) (*schema.Set, error) {
	var (
		set  *schema.Set
		errs schema.ErrorList
	)
	_ = telemetry.RecordStageOperation(ctx, StageAssemble, func(ctx context.Context) error {
		set, errs = d.assembler.Assemble(table)
		return errs.ErrOrNil()
	})

	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		attrs := 0
		for _, rs := range set.Resources {
			attrs += len(rs.Attributes)
		}
		tel.Metrics.RecordSchemasDerived(set.Len(), attrs)
		for _, e := range errs {
			tel.Metrics.RecordError(string(e.Code))
		}
	}
	return set, errs.ErrOrNil()
}

// Run derives schemas from one or more model documents in a single run.
// Documents are loaded concurrently and merged into one table in document
// order, so output stays deterministic regardless of load interleaving.
// A load or resolution failure aborts the run; extraction and assembly
// errors are collected into Result.Errors instead.
func (d *Deriver) Run(ctx context.Context, documents [][]byte) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()

	tables, format, err := d.loadAll(ctx, documents)
	if err != nil {
		return nil, err
	}

	ctx = telemetry.WithRunContext(ctx, runID, format)
	logger := telemetry.FromContext(ctx)

	table, redefined := mergeTables(tables)
	for _, id := range redefined {
		logger.WithField("shape", id.String()).Warn("Shape redefined by a later document")
	}

	if err := d.resolveTable(ctx, table); err != nil {
		telemetry.EndRunContext(ctx, "failed", err)
		return nil, err
	}

	set, deriveErr := d.DeriveSchemas(ctx, table)

	result := &Result{
		RunID:    runID,
		Format:   format,
		Set:      set,
		Table:    table,
		Duration: time.Since(start),
	}
	if errs, ok := deriveErr.(schema.ErrorList); ok {
		result.Errors = errs
	}

	status := "succeeded"
	if len(result.Errors) > 0 {
		status = "completed_with_errors"
	}
	telemetry.EndRunContext(ctx, status, deriveErr)

	logger.WithRunID(runID).WithFields(map[string]interface{}{
		"documents": len(documents),
		"shapes":    table.Len(),
		"schemas":   set.Len(),
		"errors":    len(result.Errors),
	}).Info("Derivation run completed")

	return result, nil
}

// mergeTables combines per-document tables in document order. A later
// document's definition of a shape ID replaces an earlier one; the replaced
// IDs are returned so the caller can report them.
func mergeTables(tables []*model.Table) (*model.Table, []model.ShapeID) {
	merged := model.NewTable()
	var redefined []model.ShapeID
	for _, t := range tables {
		for _, s := range t.Shapes() {
			if merged.Get(s.ID) != nil {
				redefined = append(redefined, s.ID)
			}
			merged.Put(s)
		}
	}
	return merged, redefined
}

// loadAll loads documents through a bounded worker pool. Results keep
// document order; the first load error wins.
func (d *Deriver) loadAll(ctx context.Context, documents [][]byte) ([]*model.Table, string, error) {
	if len(documents) == 0 {
		return nil, "", model.NewParseError("no model documents supplied", nil)
	}

	type loaded struct {
		table  *model.Table
		format string
		err    error
	}

	results := make([]loaded, len(documents))
	jobs := make(chan int)

	workers := d.workers
	if workers > len(documents) {
		workers = len(documents)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				loader, err := d.DetectLoader(documents[i])
				if err != nil {
					results[i] = loaded{err: err}
					continue
				}
				table, err := loader.Load(ctx, documents[i])
				results[i] = loaded{table: table, format: loader.Format(), err: err}
			}
		}()
	}

	for i := range documents {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	tables := make([]*model.Table, 0, len(documents))
	format := ""
	for _, r := range results {
		if r.err != nil {
			return nil, format, r.err
		}
		tables = append(tables, r.table)
		switch {
		case format == "":
			format = r.format
		case format != r.format:
			format = "mixed"
		}
	}
	return tables, format, nil
}

func (d *Deriver) resolveTable(ctx context.Context, table *model.Table) error {
	err := telemetry.RecordStageOperation(ctx, StageResolve, func(ctx context.Context) error {
		return resolve.Resolve(table)
	})
	if err != nil {
		return err
	}
	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		tel.Metrics.RecordShapesResolved(table.Len())
	}

	return telemetry.RecordStageOperation(ctx, StageMerge, func(ctx context.Context) error {
		return resolve.MergeTraits(table)
	})
}
