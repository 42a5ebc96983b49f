package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ringside-hq/ringside/internal/domain"
)

const tracerName = "github.com/ringside-hq/ringside/internal/adapter/otel"

// TracingStore wraps a domain.Store with OpenTelemetry tracing. Each method
// creates a span with semantic attributes and records errors. WithTx hands
// the inner transactional store back through another TracingStore so nested
// calls stay instrumented.
type TracingStore struct {
	next   domain.Store
	tracer trace.Tracer
}

// Compile-time check: TracingStore implements domain.Store.
var _ domain.Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func ownerAttrs(owner domain.EntityRef, kind domain.PeriodKind) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("entity.type", string(owner.Type)),
		attribute.String("entity.id", owner.ID),
		attribute.String("period.kind", string(kind)),
	}
}

func (s *TracingStore) CreateEntity(ctx context.Context, e domain.Entity) error {
	ctx, span := s.tracer.Start(ctx, "Store.CreateEntity",
		trace.WithAttributes(
			attribute.String("entity.id", e.ID),
			attribute.String("entity.type", string(e.Type)),
		),
	)
	defer span.End()

	err := s.next.CreateEntity(ctx, e)
	recordError(span, err)
	return err
}

func (s *TracingStore) GetEntity(ctx context.Context, id string) (domain.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "Store.GetEntity",
		trace.WithAttributes(attribute.String("entity.id", id)),
	)
	defer span.End()

	e, err := s.next.GetEntity(ctx, id)
	recordError(span, err)
	return e, err
}

func (s *TracingStore) ListEntities(ctx context.Context, filter domain.ListFilter) ([]domain.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "Store.ListEntities",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Type != nil {
		span.SetAttributes(attribute.String("filter.type", string(*filter.Type)))
	}
	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	entities, err := s.next.ListEntities(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(entities)))
	}
	return entities, err
}

func (s *TracingStore) UpdateEntity(ctx context.Context, e domain.Entity) error {
	ctx, span := s.tracer.Start(ctx, "Store.UpdateEntity",
		trace.WithAttributes(
			attribute.String("entity.id", e.ID),
			attribute.String("entity.status", string(e.Status)),
		),
	)
	defer span.End()

	err := s.next.UpdateEntity(ctx, e)
	recordError(span, err)
	return err
}

func (s *TracingStore) OpenPeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, startedAt time.Time, counterpart *domain.EntityRef) (domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.OpenPeriod",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	if counterpart != nil {
		span.SetAttributes(attribute.String("period.counterpart_id", counterpart.ID))
	}

	p, err := s.next.OpenPeriod(ctx, owner, kind, startedAt, counterpart)
	recordError(span, err)
	return p, err
}

func (s *TracingStore) ClosePeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, endedAt time.Time) (domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.ClosePeriod",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	p, err := s.next.ClosePeriod(ctx, owner, kind, endedAt)
	recordError(span, err)
	return p, err
}

func (s *TracingStore) ClosePeriodFor(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, counterpart domain.EntityRef, endedAt time.Time) (domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.ClosePeriodFor",
		trace.WithAttributes(append(ownerAttrs(owner, kind),
			attribute.String("period.counterpart_id", counterpart.ID),
		)...),
	)
	defer span.End()

	p, err := s.next.ClosePeriodFor(ctx, owner, kind, counterpart, endedAt)
	recordError(span, err)
	return p, err
}

func (s *TracingStore) FindOpen(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind) (*domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.FindOpen",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	p, err := s.next.FindOpen(ctx, owner, kind)
	recordError(span, err)
	return p, err
}

func (s *TracingStore) CurrentPeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, asOf time.Time) (*domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.CurrentPeriod",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	p, err := s.next.CurrentPeriod(ctx, owner, kind, asOf)
	recordError(span, err)
	return p, err
}

func (s *TracingStore) Periods(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind) ([]domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Periods",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	periods, err := s.next.Periods(ctx, owner, kind)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(periods)))
	}
	return periods, err
}

func (s *TracingStore) PeriodsBetween(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, from, to time.Time) ([]domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.PeriodsBetween",
		trace.WithAttributes(ownerAttrs(owner, kind)...),
	)
	defer span.End()

	periods, err := s.next.PeriodsBetween(ctx, owner, kind, from, to)
	recordError(span, err)
	return periods, err
}

func (s *TracingStore) History(ctx context.Context, owner domain.EntityRef) ([]domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.History",
		trace.WithAttributes(
			attribute.String("entity.type", string(owner.Type)),
			attribute.String("entity.id", owner.ID),
		),
	)
	defer span.End()

	periods, err := s.next.History(ctx, owner)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(periods)))
	}
	return periods, err
}

func (s *TracingStore) OpenPeriodsByCounterpart(ctx context.Context, counterpart domain.EntityRef, kind domain.PeriodKind) ([]domain.Period, error) {
	ctx, span := s.tracer.Start(ctx, "Store.OpenPeriodsByCounterpart",
		trace.WithAttributes(
			attribute.String("period.counterpart_id", counterpart.ID),
			attribute.String("period.kind", string(kind)),
		),
	)
	defer span.End()

	periods, err := s.next.OpenPeriodsByCounterpart(ctx, counterpart, kind)
	recordError(span, err)
	return periods, err
}

func (s *TracingStore) ReschedulePeriod(ctx context.Context, id string, startedAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "Store.ReschedulePeriod",
		trace.WithAttributes(attribute.String("period.id", id)),
	)
	defer span.End()

	err := s.next.ReschedulePeriod(ctx, id, startedAt)
	recordError(span, err)
	return err
}

func (s *TracingStore) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	ctx, span := s.tracer.Start(ctx, "Store.WithTx")
	defer span.End()

	err := s.next.WithTx(ctx, func(tx domain.Store) error {
		return fn(&TracingStore{next: tx, tracer: s.tracer})
	})
	recordError(span, err)
	return err
}
