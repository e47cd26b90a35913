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

type ServiceReadStore struct {
	db db.DBTX
}

func NewServiceReadStore(pool *pgxpool.Pool) *ServiceReadStore {
	return &ServiceReadStore{db: pool}
}

func (s *ServiceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ServiceView, error) {
	const query = `
		SELECT id, shop_id, name, duration_min, price_cents, discounted_price_cents, active
		FROM services
		WHERE id = $1`

	var view queries.ServiceView
	var discounted pgtype.Int8
	err := s.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.ShopID, &view.Name,
		&view.DurationMin, &view.PriceCents, &discounted, &view.Active,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find service", err)
	}
	view.DiscountedPriceCents = pgconv.Int64PtrFromPgtype(discounted)

	return &view, nil
}
