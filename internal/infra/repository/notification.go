package repository

import (
	"context"
	"time"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"

	"github.com/google/uuid"
)

// NotificationRepository writes outbox rows inside the caller's transaction
// so a notification exists iff the business change committed. Delivery is a
// separate consumer's job.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(
	ctx context.Context,
	tx db.DBTX,
	kind, topic string,
	payload []byte,
	runAt time.Time,
) error {
	const query = `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, uuid.New(), kind, topic, payload, runAt, runAt)
	if err != nil {
		return infra.WrapPgErr("failed to enqueue notification job", err)
	}
	return nil
}
