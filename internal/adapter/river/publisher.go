package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/ringside-hq/ringside/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// StatusChangedArgs carries the data needed to process a status change
// asynchronously. River serializes this as JSON into its job queue table.
// It includes a snapshot of the entity at the time the event was published,
// so the worker never needs to query the database.
type StatusChangedArgs struct {
	EntityID   string `json:"entity_id"`
	EntityType string `json:"entity_type"`
	Name       string `json:"name"`
	From       string `json:"from"`
	To         string `json:"to"`
	At         string `json:"at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (StatusChangedArgs) Kind() string { return "status.changed" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a status-changed event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, change domain.StatusChanged) error {
	_, err := p.client.Insert(ctx, StatusChangedArgs{
		EntityID:   change.Entity.ID,
		EntityType: string(change.Entity.Type),
		Name:       change.Entity.Name,
		From:       string(change.From),
		To:         string(change.To),
		At:         change.At.Format("2006-01-02T15:04:05Z"),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing status change job: %w", err)
	}
	return nil
}
