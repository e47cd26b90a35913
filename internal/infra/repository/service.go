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

type ServiceRepository struct {
	db db.DBTX
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{db: pool}
}

func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.ServiceSnapshot, error) {
	const query = `
		SELECT id, shop_id, name, duration_min, price_cents, discounted_price_cents, active
		FROM services
		WHERE id = $1`

	var snap commands.ServiceSnapshot
	var discounted pgtype.Int8
	err := r.db.QueryRow(ctx, query, id).Scan(
		&snap.ID, &snap.ShopID, &snap.Name,
		&snap.DurationMin, &snap.PriceCents, &discounted, &snap.Active,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find service", err)
	}
	snap.DiscountedPriceCents = pgconv.Int64PtrFromPgtype(discounted)

	return &snap, nil
}
