package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// StatusChangedWorker processes status-changed jobs from the River queue.
// For now it logs the change; future versions will fan out to webhooks and
// the notification system.
type StatusChangedWorker struct {
	river.WorkerDefaults[StatusChangedArgs]
}

// Work processes a single status-changed job.
func (w *StatusChangedWorker) Work(ctx context.Context, job *river.Job[StatusChangedArgs]) error {
	slog.InfoContext(ctx, "processing status change",
		"entity_id", job.Args.EntityID,
		"entity_type", job.Args.EntityType,
		"from", job.Args.From,
		"to", job.Args.To,
		"effective_at", job.Args.At,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
