package repository

import (
	"context"
	"time"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShopRepository struct {
	db db.DBTX
}

func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: pool}
}

func (r *ShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.ShopSnapshot, error) {
	const shopQuery = `
		SELECT id, owner_id, name, timezone, auto_confirm
		FROM shops
		WHERE id = $1`

	var snap commands.ShopSnapshot
	err := r.db.QueryRow(ctx, shopQuery, id).Scan(
		&snap.ID, &snap.OwnerID, &snap.Name, &snap.Timezone, &snap.AutoConfirm,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find shop", err)
	}

	const hoursQuery = `
		SELECT weekday, open_min, close_min
		FROM shop_hours
		WHERE shop_id = $1
		ORDER BY weekday`

	rows, err := r.db.Query(ctx, hoursQuery, id)
	if err != nil {
		return nil, infra.WrapPgErr("failed to load shop hours", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int32
		var entry commands.HoursEntry
		if err := rows.Scan(&weekday, &entry.OpenMin, &entry.CloseMin); err != nil {
			return nil, infra.WrapPgErr("failed to scan shop hours", err)
		}
		entry.Weekday = time.Weekday(weekday)
		snap.Hours = append(snap.Hours, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr("failed to read shop hours", err)
	}

	return &snap, nil
}
