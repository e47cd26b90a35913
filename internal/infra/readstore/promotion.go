package readstore

import (
	"context"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/pkg/pgconv"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromotionReadStore struct {
	db db.DBTX
}

func NewPromotionReadStore(pool *pgxpool.Pool) *PromotionReadStore {
	return &PromotionReadStore{db: pool}
}

func (s *PromotionReadStore) FindByShopAndCode(ctx context.Context, shopID uuid.UUID, code string) (*queries.PromotionView, error) {
	const query = `
		SELECT p.id, p.shop_id, p.code, p.amount_off_cents, p.percent_off,
		       p.valid_from, p.valid_to, p.usage_limit, p.used_count,
		       COALESCE(array_agg(ps.service_id) FILTER (WHERE ps.service_id IS NOT NULL), '{}')
		FROM promotions p
		LEFT JOIN promotion_services ps ON ps.promotion_id = p.id
		WHERE p.shop_id = $1 AND p.code = $2
		GROUP BY p.id`

	var view queries.PromotionView
	var amountOff pgtype.Int8
	var percentOff pgtype.Float8
	var validFrom, validTo pgtype.Timestamptz
	var usageLimit pgtype.Int4

	err := s.db.QueryRow(ctx, query, shopID, code).Scan(
		&view.ID, &view.ShopID, &view.Code, &amountOff, &percentOff,
		&validFrom, &validTo, &usageLimit, &view.UsedCount,
		&view.ServiceIDs,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find promotion", err)
	}

	view.AmountOffCents = pgconv.Int64PtrFromPgtype(amountOff)
	view.PercentOff = pgconv.Float64PtrFromPgtype(percentOff)
	view.ValidFrom = pgconv.TimePtrFromPgtype(validFrom)
	view.ValidTo = pgconv.TimePtrFromPgtype(validTo)
	view.UsageLimit = pgconv.Int32PtrFromPgtype(usageLimit)

	return &view, nil
}
