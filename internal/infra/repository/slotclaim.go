package repository

import (
	"context"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/infra"
	"shopbook/internal/infra/db"

	"github.com/google/uuid"
)

// SlotClaimRepository backs the conflict guard with the slot_claims table.
// The GiST exclusion constraint (shop_id WITH =, during WITH &&) makes the
// INSERT itself the race arbiter: of N concurrent overlapping inserts
// exactly one commits and the rest fail with SQLSTATE 23P01.
type SlotClaimRepository struct{}

func NewSlotClaimRepository() *SlotClaimRepository {
	return &SlotClaimRepository{}
}

func (r *SlotClaimRepository) Reserve(
	ctx context.Context,
	tx db.DBTX,
	shopID uuid.UUID,
	day time.Time,
	slot appointment.TimeSlot,
	appointmentID uuid.UUID,
) error {
	const query = `
		INSERT INTO slot_claims (id, shop_id, day, during, appointment_id)
		VALUES ($1, $2, $3, tstzrange($4, $5, '[)'), $6)`

	_, err := tx.Exec(ctx, query,
		uuid.New(), shopID, day, slot.Start(), slot.End(), appointmentID,
	)
	if err != nil {
		return infra.WrapPgErr("failed to reserve slot", err)
	}
	return nil
}

func (r *SlotClaimRepository) Release(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID) error {
	const query = `DELETE FROM slot_claims WHERE appointment_id = $1`

	// Deleting an already-released claim affects zero rows, which is fine.
	if _, err := tx.Exec(ctx, query, appointmentID); err != nil {
		return infra.WrapPgErr("failed to release slot claim", err)
	}
	return nil
}
