// Package report orchestrates the report assembly pipeline: directive
// parsing, snapshot capture, composition and artifact persistence.
package report

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/internal/compose"
	"github.com/heliograph/heliograph/internal/directive"
	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/internal/snapshot"
	"github.com/heliograph/heliograph/internal/store"
	"github.com/heliograph/heliograph/internal/template"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
	"github.com/heliograph/heliograph/pkg/telemetry"
)

const (
	// DefaultWorkers is the number of generation workers when unconfigured
	DefaultWorkers = 3
	// queueSize bounds the pending generation queue
	queueSize = 100
)

// GenerateRequest carries the inputs for one report generation
type GenerateRequest struct {
	// Template is the layout template name; empty selects basic
	Template string
	// Variant selects plain or chart-augmented output; empty selects plain
	Variant model.ReportVariant
	// Text is the raw report body, possibly carrying inline directives
	Text string
}

// task is one queued generation with its completion callback
type task struct {
	req      GenerateRequest
	callback func(*model.ReportRecord, error)
}

// Engine runs report generations through a bounded worker pool
type Engine struct {
	store    store.Store
	provider snapshot.Provider
	composer *compose.Composer
	writer   ArtifactWriter

	taskQueue chan *task
	workers   int
	wg        sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// ArtifactWriter persists composed PDFs
type ArtifactWriter interface {
	Write(name string, data []byte) (string, error)
}

// NewEngine creates a report engine
func NewEngine(s store.Store, provider snapshot.Provider, composer *compose.Composer, writer ArtifactWriter, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:     s,
		provider:  provider,
		composer:  composer,
		writer:    writer,
		taskQueue: make(chan *task, queueSize),
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the generation workers
func (e *Engine) Start() {
	logger.Info("Starting report engine", zap.Int("workers", e.workers))

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
}

// Stop stops the engine, draining queued tasks first
func (e *Engine) Stop() {
	logger.Info("Stopping report engine")
	e.cancel()
	close(e.taskQueue)
	e.wg.Wait()
	logger.Info("Report engine stopped")
}

// worker processes generation tasks
func (e *Engine) worker(id int) {
	defer e.wg.Done()
	logger.Debug("Report worker started", zap.Int("worker_id", id))

	for t := range e.taskQueue {
		select {
		case <-e.ctx.Done():
			t.callback(nil, e.ctx.Err())
		default:
			e.processTask(t)
		}
	}
}

// processTask runs one generation, recovering from panics
func (e *Engine) processTask(t *task) {
	var record *model.ReportRecord
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during report generation: %v", r)
			logger.Error("Report generation panic", zap.Any("panic", r))
		}
		if t.callback != nil {
			t.callback(record, err)
		}
	}()

	record, err = e.Generate(e.ctx, t.req)
}

// Submit enqueues a generation; callback runs when it finishes
func (e *Engine) Submit(req GenerateRequest, callback func(*model.ReportRecord, error)) error {
	select {
	case e.taskQueue <- &task{req: req, callback: callback}:
		logger.Info("Report submitted to queue",
			zap.String("template", req.Template),
			zap.String("variant", string(req.Variant)),
		)
		return nil
	default:
		return errors.New(errors.ErrCodeConflict, "report queue is full")
	}
}

// GenerateAndWait enqueues a generation and blocks until it completes
// or ctx is cancelled. Concurrency stays bounded by the worker pool.
func (e *Engine) GenerateAndWait(ctx context.Context, req GenerateRequest) (*model.ReportRecord, error) {
	type result struct {
		record *model.ReportRecord
		err    error
	}
	done := make(chan result, 1)

	if err := e.Submit(req, func(record *model.ReportRecord, err error) {
		done <- result{record: record, err: err}
	}); err != nil {
		return nil, err
	}

	select {
	case r := <-done:
		return r.record, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.ctx.Done():
		return nil, e.ctx.Err()
	}
}

// Generate runs the full pipeline: parse directives, capture a
// snapshot, compose the PDF, persist the record and its artifact.
// Snapshot failure aborts before anything is persisted.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*model.ReportRecord, error) {
	if req.Variant == "" {
		req.Variant = model.ReportVariantPlain
	}
	if req.Template == "" {
		req.Template = template.Basic
	}
	if !req.Variant.Valid() {
		return nil, errors.ErrValidation(fmt.Sprintf("invalid report variant: %q", req.Variant))
	}

	ctx, span := telemetry.StartSpan(ctx, "report.generate",
		telemetry.WithReportAttributes("", req.Template, string(req.Variant)))
	defer span.End()

	startTime := time.Now()
	metrics := telemetry.GetMetrics()
	metrics.RecordReportStarted(ctx, req.Template, string(req.Variant))

	record, err := e.generate(ctx, req)
	metrics.RecordReportCompleted(ctx, string(req.Variant), err == nil, time.Since(startTime).Seconds())
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanAttributes(span,
		telemetry.AttrReportID.String(record.ID),
		telemetry.AttrReportName.String(record.Name),
	)
	telemetry.SetSpanOK(span)

	logger.Info("Report generated",
		zap.String("record_id", record.ID),
		zap.String("name", record.Name),
		zap.String("template", record.Template),
		zap.String("variant", string(record.Variant)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return record, nil
}

func (e *Engine) generate(ctx context.Context, req GenerateRequest) (*model.ReportRecord, error) {
	cleanText, directives := directive.Parse(req.Text)

	// Fail fast on an unknown template before touching the plant
	if _, err := template.Get(req.Template); err != nil {
		return nil, err
	}

	snap, err := e.fetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	record := &model.ReportRecord{
		Template:   req.Template,
		Variant:    req.Variant,
		Content:    cleanText,
		Directives: model.DirectivesFromMap(directives),
		Data:       model.SnapshotColumn{Snapshot: *snap},
	}

	// Compose before persisting so failed generations leave no record
	pdf, err := e.composer.Compose(record, directives)
	if err != nil {
		return nil, err
	}

	if err := e.store.Report().Append(record); err != nil {
		return nil, err
	}

	e.writeArtifact(record, pdf)
	return record, nil
}

// fetchSnapshot captures a plant snapshot, mapping any failure to a
// data-unavailable error
func (e *Engine) fetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "snapshot.fetch")
	defer span.End()

	startTime := time.Now()
	snap, err := e.provider.Fetch(ctx)
	telemetry.GetMetrics().RecordSnapshotFetch(ctx, fmt.Sprintf("%T", e.provider), err == nil, time.Since(startTime).Seconds())
	if err != nil {
		telemetry.SetSpanError(span, err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.ErrDataUnavailable(err)
	}
	return snap, nil
}

// writeArtifact persists the PDF best-effort; the record stays valid
// without its artifact and can be re-composed later
func (e *Engine) writeArtifact(record *model.ReportRecord, pdf []byte) {
	path, err := e.writer.Write(artifactName(record), pdf)
	if err != nil {
		logger.Error("Failed to write report artifact",
			zap.String("record_id", record.ID),
			zap.Error(err),
		)
		return
	}
	if err := e.store.Report().UpdateArtifactPath(record.ID, path); err != nil {
		logger.Error("Failed to save artifact path",
			zap.String("record_id", record.ID),
			zap.Error(err),
		)
		return
	}
	record.ArtifactPath = path
}

// artifactName returns the on-disk name for a record's current version.
// Version 1 keeps the sequential record name; upgrades get a version
// suffix so earlier artifacts survive.
func artifactName(record *model.ReportRecord) string {
	if record.Version <= 1 {
		return record.Name
	}
	base := strings.TrimSuffix(record.Name, consts.ReportExtension)
	return fmt.Sprintf("%s_v%d%s", base, record.Version, consts.ReportExtension)
}

// Upgrade replaces a record's text and directives, bumps its version
// and re-composes the PDF from the record's frozen snapshot. The plant
// is only re-queried when the frozen snapshot lacks chart series the
// record's variant needs.
func (e *Engine) Upgrade(ctx context.Context, id, newText string) (*model.ReportRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "report.upgrade")
	defer span.End()

	cleanText, directives := directive.Parse(newText)

	record, err := e.store.Report().Update(id, cleanText, model.DirectivesFromMap(directives))
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	pdf, err := e.composeUpgrade(ctx, record, directives)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	e.writeArtifact(record, pdf)
	telemetry.GetMetrics().RecordReportUpgrade(ctx, string(record.Variant))
	telemetry.SetSpanAttributes(span,
		telemetry.AttrReportID.String(record.ID),
		telemetry.AttrReportVersion.Int(record.Version),
	)
	telemetry.SetSpanOK(span)

	logger.Info("Report upgraded",
		zap.String("record_id", record.ID),
		zap.Int("version", record.Version),
	)
	return record, nil
}

// composeUpgrade composes from the frozen snapshot, fetching live chart
// series once if the frozen data predates the chart variant's needs
func (e *Engine) composeUpgrade(ctx context.Context, record *model.ReportRecord, directives map[string]string) ([]byte, error) {
	pdf, err := e.composer.Compose(record, directives)
	if err == nil || !errors.HasCode(err, errors.ErrCodeMissingChartData) {
		return pdf, err
	}

	logger.Warn("Frozen snapshot lacks chart series, fetching live charts",
		zap.String("record_id", record.ID),
	)
	charts, chartErr := e.provider.FetchCharts(ctx)
	if chartErr != nil {
		return nil, chartErr
	}
	record.Data.Charts = charts
	return e.composer.Compose(record, directives)
}
