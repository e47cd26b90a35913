package repository

import (
	"context"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/pkg/pgconv"
	"shopbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromotionRepository struct {
	db db.DBTX
}

func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{db: pool}
}

func (r *PromotionRepository) FindByShopAndCode(ctx context.Context, shopID uuid.UUID, code string) (*commands.PromotionSnapshot, error) {
	const query = `
		SELECT id, shop_id, code, amount_off_cents, percent_off,
		       valid_from, valid_to, usage_limit, used_count
		FROM promotions
		WHERE shop_id = $1 AND code = $2`

	var snap commands.PromotionSnapshot
	var amountOff pgtype.Int8
	var percentOff pgtype.Float8
	var validFrom, validTo pgtype.Timestamptz
	var usageLimit pgtype.Int4

	err := r.db.QueryRow(ctx, query, shopID, code).Scan(
		&snap.ID, &snap.ShopID, &snap.Code, &amountOff, &percentOff,
		&validFrom, &validTo, &usageLimit, &snap.UsedCount,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find promotion", err)
	}

	snap.AmountOffCents = pgconv.Int64PtrFromPgtype(amountOff)
	snap.PercentOff = pgconv.Float64PtrFromPgtype(percentOff)
	snap.ValidFrom = pgconv.TimePtrFromPgtype(validFrom)
	snap.ValidTo = pgconv.TimePtrFromPgtype(validTo)
	snap.UsageLimit = pgconv.Int32PtrFromPgtype(usageLimit)

	serviceIDs, err := r.eligibleServiceIDs(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.ServiceIDs = serviceIDs

	return &snap, nil
}

func (r *PromotionRepository) eligibleServiceIDs(ctx context.Context, promotionID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT service_id
		FROM promotion_services
		WHERE promotion_id = $1`

	rows, err := r.db.Query(ctx, query, promotionID)
	if err != nil {
		return nil, infra.WrapPgErr("failed to load promotion services", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapPgErr("failed to scan promotion service", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr("failed to read promotion services", err)
	}

	return ids, nil
}

// IncrementUsage bumps used_count while re-checking the limit in the same
// statement. Zero affected rows means the limit was exhausted after the
// evaluation read, so the caller must abort the booking.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	const query = `
		UPDATE promotions
		SET used_count = used_count + 1
		WHERE id = $1
		  AND (usage_limit IS NULL OR used_count < usage_limit)`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return infra.WrapPgErr("failed to increment promotion usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("promotion usage limit reached", nil, infra.KindConflict)
	}
	return nil
}
