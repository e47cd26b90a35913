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

type ShopReadStore struct {
	db db.DBTX
}

func NewShopReadStore(pool *pgxpool.Pool) *ShopReadStore {
	return &ShopReadStore{db: pool}
}

func (s *ShopReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ShopView, error) {
	const shopQuery = `
		SELECT id, owner_id, name, timezone, auto_confirm
		FROM shops
		WHERE id = $1`

	var view queries.ShopView
	err := s.db.QueryRow(ctx, shopQuery, id).Scan(
		&view.ID, &view.OwnerID, &view.Name, &view.Timezone, &view.AutoConfirm,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find shop", err)
	}

	const hoursQuery = `
		SELECT weekday, open_min, close_min
		FROM shop_hours
		WHERE shop_id = $1
		ORDER BY weekday`

	rows, err := s.db.Query(ctx, hoursQuery, id)
	if err != nil {
		return nil, infra.WrapPgErr("failed to load shop hours", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int32
		var hours queries.HoursView
		if err := rows.Scan(&weekday, &hours.OpenMin, &hours.CloseMin); err != nil {
			return nil, infra.WrapPgErr("failed to scan shop hours", err)
		}
		hours.Weekday = time.Weekday(weekday)
		view.Hours = append(view.Hours, hours)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr("failed to read shop hours", err)
	}

	return &view, nil
}
