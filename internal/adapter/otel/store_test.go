package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/ringside-hq/ringside/internal/adapter/otel"
	"github.com/ringside-hq/ringside/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock store ---

// mockStore embeds the Store interface so only the methods a test exercises
// need implementations; calling anything else panics loudly.
type mockStore struct {
	domain.Store

	entities map[string]domain.Entity
	periods  []domain.Period
}

func newMockStore() *mockStore {
	return &mockStore{entities: make(map[string]domain.Entity)}
}

func (m *mockStore) CreateEntity(_ context.Context, e domain.Entity) error {
	m.entities[e.ID] = e
	return nil
}

func (m *mockStore) GetEntity(_ context.Context, id string) (domain.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return domain.Entity{}, domain.ErrEntityNotFound
	}
	return e, nil
}

func (m *mockStore) ListEntities(_ context.Context, _ domain.ListFilter) ([]domain.Entity, error) {
	out := make([]domain.Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) OpenPeriod(_ context.Context, owner domain.EntityRef, kind domain.PeriodKind, startedAt time.Time, counterpart *domain.EntityRef) (domain.Period, error) {
	p := domain.Period{ID: "p-1", Owner: owner, Kind: kind, Counterpart: counterpart, StartedAt: startedAt}
	m.periods = append(m.periods, p)
	return p, nil
}

func (m *mockStore) WithTx(_ context.Context, fn func(domain.Store) error) error {
	return fn(m)
}

// --- Tests ---

func TestTracingStore_CreateEntity_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	store := adapter.NewTracingStore(inner)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	entity := domain.NewEntity("w-1", domain.TypeWrestler, "El Fantasma", "Monterrey", now)
	if err := store.CreateEntity(context.Background(), entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "Store.CreateEntity" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "Store.CreateEntity")
	}

	assertAttribute(t, spans[0], "entity.id", "w-1")
	assertAttribute(t, spans[0], "entity.type", "wrestler")
}

func TestTracingStore_GetEntity_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	store := adapter.NewTracingStore(inner)

	_, err := store.GetEntity(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}

	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTracingStore_ListEntities_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	store := adapter.NewTracingStore(inner)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inner.entities["w-1"] = domain.NewEntity("w-1", domain.TypeWrestler, "A", "", now)
	inner.entities["w-2"] = domain.NewEntity("w-2", domain.TypeWrestler, "B", "", now)

	entities, err := store.ListEntities(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Errorf("got %d entities, want 2", len(entities))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	assertAttribute(t, spans[0], "result.count", "2")
}

func TestTracingStore_OpenPeriod_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	store := adapter.NewTracingStore(inner)

	owner := domain.EntityRef{Type: domain.TypeWrestler, ID: "w-1"}
	started := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := store.OpenPeriod(context.Background(), owner, domain.KindEmployment, started, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "Store.OpenPeriod" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "Store.OpenPeriod")
	}

	assertAttribute(t, spans[0], "period.kind", "employment")
}

func TestTracingStore_WithTx_InnerCallsTraced(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	store := adapter.NewTracingStore(inner)

	err := store.WithTx(context.Background(), func(tx domain.Store) error {
		_, err := tx.GetEntity(context.Background(), "missing")
		if !errors.Is(err, domain.ErrEntityNotFound) {
			t.Fatalf("expected ErrEntityNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	names := map[string]bool{}
	for _, s := range spans {
		names[s.Name] = true
	}
	if !names["Store.WithTx"] || !names["Store.GetEntity"] {
		t.Errorf("missing expected spans, got %v", names)
	}
}

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(publisherFunc(func(_ context.Context, _ domain.StatusChanged) error {
		return nil
	}))

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	change := domain.StatusChanged{
		Entity: domain.NewEntity("w-1", domain.TypeWrestler, "El Fantasma", "", now),
		From:   domain.StatusUnemployed,
		To:     domain.StatusEmployed,
		At:     now,
	}
	if err := pub.Publish(context.Background(), change); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "status.from", "unemployed")
	assertAttribute(t, spans[0], "status.to", "employed")
}

type publisherFunc func(ctx context.Context, change domain.StatusChanged) error

func (f publisherFunc) Publish(ctx context.Context, change domain.StatusChanged) error {
	return f(ctx, change)
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
