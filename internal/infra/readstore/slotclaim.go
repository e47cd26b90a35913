package readstore

import (
	"context"
	"time"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotClaimReadStore struct {
	db db.DBTX
}

func NewSlotClaimReadStore(pool *pgxpool.Pool) *SlotClaimReadStore {
	return &SlotClaimReadStore{db: pool}
}

// BusyIntervals returns the claimed windows overlapping [from, to) for a
// shop. Claims are deleted when appointments go terminal, so no status
// filter is needed here.
func (s *SlotClaimReadStore) BusyIntervals(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]queries.BusyInterval, error) {
	const query = `
		SELECT lower(during), upper(during)
		FROM slot_claims
		WHERE shop_id = $1 AND during && tstzrange($2, $3, '[)')
		ORDER BY lower(during)`

	rows, err := s.db.Query(ctx, query, shopID, from, to)
	if err != nil {
		return nil, infra.WrapPgErr("failed to load busy intervals", err)
	}
	defer rows.Close()

	var intervals []queries.BusyInterval
	for rows.Next() {
		var interval queries.BusyInterval
		if err := rows.Scan(&interval.Start, &interval.End); err != nil {
			return nil, infra.WrapPgErr("failed to scan busy interval", err)
		}
		intervals = append(intervals, interval)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr("failed to read busy intervals", err)
	}

	return intervals, nil
}
