package repository

import (
	"context"
	"time"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	idempotencyStatusProcessing = "processing"
	idempotencyStatusCompleted  = "completed"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{db: pool}
}

// TryInsert claims the key for this request. ON CONFLICT DO NOTHING keeps
// the insert race-safe; zero affected rows means another request already
// holds the key and the caller must consult Get.
func (r *IdempotencyRepository) TryInsert(
	ctx context.Context,
	key, customerID uuid.UUID,
	endpoint, requestHash string,
	expiresAt time.Time,
) error {
	const query = `
		INSERT INTO idempotency_keys (key, customer_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key, customer_id) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		key, customerID, endpoint, requestHash, idempotencyStatusProcessing, expiresAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to insert idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key already exists", nil, infra.KindDuplicateKey)
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, customerID uuid.UUID) (*commands.IdempotencyRecord, error) {
	const query = `
		SELECT key, customer_id, status, request_hash, result_appointment_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND customer_id = $2`

	var record commands.IdempotencyRecord
	var resultID pgtype.UUID
	err := r.db.QueryRow(ctx, query, key, customerID).Scan(
		&record.Key, &record.CustomerID, &record.Status,
		&record.RequestHash, &resultID, &record.ExpiresAt,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to get idempotency key", err)
	}

	if resultID.Valid {
		id := uuid.UUID(resultID.Bytes)
		record.ResultAppointmentID = &id
	}

	return &record, nil
}

func (r *IdempotencyRepository) MarkCompleted(
	ctx context.Context,
	tx db.DBTX,
	key, customerID uuid.UUID,
	responseHash string,
	appointmentID uuid.UUID,
) error {
	const query = `
		UPDATE idempotency_keys
		SET status = $3, response_hash = $4, result_appointment_id = $5
		WHERE key = $1 AND customer_id = $2 AND status = $6`

	tag, err := tx.Exec(ctx, query,
		key, customerID, idempotencyStatusCompleted, responseHash, appointmentID, idempotencyStatusProcessing,
	)
	if err != nil {
		return infra.WrapPgErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not in processing state", nil, infra.KindConflict)
	}
	return nil
}

// PurgeExpired removes keys past their TTL; invoked opportunistically by a
// background sweep, not on the request path.
func (r *IdempotencyRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM idempotency_keys WHERE expires_at < $1`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapPgErr("failed to purge idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
