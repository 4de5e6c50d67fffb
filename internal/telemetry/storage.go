package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

const storageScopeName = "github.com/k2tech/ailab/internal/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in ailab.storage.* metrics.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner    storage.Storage
	tracer   trace.Tracer
	ops      metric.Int64Counter
	dur      metric.Float64Histogram
	errs     metric.Int64Counter
	hypGauge metric.Int64Gauge
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("ailab.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("ailab.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("ailab.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	hypGauge, _ := m.Int64Gauge("ailab.hypothesis.count",
		metric.WithDescription("Number of hypotheses returned by the last list, by stage"),
	)
	return &InstrumentedStorage{
		inner:    s,
		tracer:   Tracer(storageScopeName),
		ops:      ops,
		dur:      dur,
		errs:     errs,
		hypGauge: hypGauge,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// ── Hypothesis reads ────────────────────────────────────────────────────────

func (s *InstrumentedStorage) GetHypothesis(ctx context.Context, hypID string) (*storage.Hypothesis, error) {
	attrs := []attribute.KeyValue{attribute.String("ailab.hyp.id", hypID)}
	ctx, span, t := s.op(ctx, "GetHypothesis", attrs...)
	v, err := s.inner.GetHypothesis(ctx, hypID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) ListHypotheses(ctx context.Context, includeArchived bool) ([]*storage.Hypothesis, error) {
	attrs := []attribute.KeyValue{attribute.Bool("ailab.include_archived", includeArchived)}
	ctx, span, t := s.op(ctx, "ListHypotheses", attrs...)
	v, err := s.inner.ListHypotheses(ctx, includeArchived)
	if err == nil {
		span.SetAttributes(attribute.Int("ailab.result.count", len(v)))
		// Gauge snapshot of the portfolio, broken down by stage.
		byStage := map[string]int64{}
		for _, hyp := range v {
			byStage[string(hyp.Record.Stage)]++
		}
		for stage, n := range byStage {
			s.hypGauge.Record(ctx, n, metric.WithAttributes(attribute.String("stage", stage)))
		}
	}
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Onboarding sessions ─────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateSession(ctx context.Context, session *types.OnboardingSession) error {
	attrs := []attribute.KeyValue{attribute.String("ailab.session.id", session.ID)}
	ctx, span, t := s.op(ctx, "CreateSession", attrs...)
	err := s.inner.CreateSession(ctx, session)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetSession(ctx context.Context, id string) (*types.OnboardingSession, error) {
	attrs := []attribute.KeyValue{attribute.String("ailab.session.id", id)}
	ctx, span, t := s.op(ctx, "GetSession", attrs...)
	v, err := s.inner.GetSession(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) UpdateSession(ctx context.Context, session *types.OnboardingSession) error {
	attrs := []attribute.KeyValue{attribute.String("ailab.session.id", session.ID)}
	ctx, span, t := s.op(ctx, "UpdateSession", attrs...)
	err := s.inner.UpdateSession(ctx, session)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) AppendTranscript(ctx context.Context, entry *types.TranscriptEntry) error {
	attrs := []attribute.KeyValue{
		attribute.String("ailab.session.id", entry.SessionID),
		attribute.String("ailab.transcript.source", entry.Source),
	}
	ctx, span, t := s.op(ctx, "AppendTranscript", attrs...)
	err := s.inner.AppendTranscript(ctx, entry)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetTranscript(ctx context.Context, sessionID string) ([]*types.TranscriptEntry, error) {
	attrs := []attribute.KeyValue{attribute.String("ailab.session.id", sessionID)}
	ctx, span, t := s.op(ctx, "GetTranscript", attrs...)
	v, err := s.inner.GetTranscript(ctx, sessionID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) AppendSessionEvent(ctx context.Context, event *types.SessionEvent) error {
	attrs := []attribute.KeyValue{
		attribute.String("ailab.session.id", event.SessionID),
		attribute.String("ailab.event.type", event.EventType),
	}
	ctx, span, t := s.op(ctx, "AppendSessionEvent", attrs...)
	err := s.inner.AppendSessionEvent(ctx, event)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetSessionEvents(ctx context.Context, sessionID string) ([]*types.SessionEvent, error) {
	attrs := []attribute.KeyValue{attribute.String("ailab.session.id", sessionID)}
	ctx, span, t := s.op(ctx, "GetSessionEvents", attrs...)
	v, err := s.inner.GetSessionEvents(ctx, sessionID)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Configuration ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) SetConfig(ctx context.Context, key, value string) error {
	attrs := []attribute.KeyValue{attribute.String("ailab.config.key", key)}
	ctx, span, t := s.op(ctx, "SetConfig", attrs...)
	err := s.inner.SetConfig(ctx, key, value)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetConfig(ctx context.Context, key string) (string, error) {
	attrs := []attribute.KeyValue{attribute.String("ailab.config.key", key)}
	ctx, span, t := s.op(ctx, "GetConfig", attrs...)
	v, err := s.inner.GetConfig(ctx, key)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	ctx, span, t := s.op(ctx, "RunInTransaction")
	err := s.inner.RunInTransaction(ctx, fn)
	s.done(ctx, span, t, err)
	return err
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
