package readstore

import (
	"context"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/pkg/pgconv"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentReadStore struct {
	db db.DBTX
}

func NewAppointmentReadStore(pool *pgxpool.Pool) *AppointmentReadStore {
	return &AppointmentReadStore{db: pool}
}

func (s *AppointmentReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.AppointmentView, error) {
	const query = `
		SELECT a.id, a.shop_id, sh.name, sh.owner_id,
		       a.service_id, sv.name, a.customer_id,
		       a.day, a.start_at, a.end_at, a.status,
		       a.payment_method, a.payment_status, a.amount_cents, a.transaction_id,
		       a.promo_code, a.promo_discount_cents, a.notes,
		       a.created_at, a.updated_at
		FROM appointments a
		JOIN shops sh ON sh.id = a.shop_id
		JOIN services sv ON sv.id = a.service_id
		WHERE a.id = $1`

	var view queries.AppointmentView
	var day time.Time
	var transactionID, promoCode, notes pgtype.Text

	err := s.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.ShopID, &view.ShopName, &view.ShopOwnerID,
		&view.ServiceID, &view.ServiceName, &view.CustomerID,
		&day, &view.StartAt, &view.EndAt, &view.Status,
		&view.PaymentMethod, &view.PaymentStatus, &view.AmountCents, &transactionID,
		&promoCode, &view.DiscountCents, &notes,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find appointment view", err)
	}

	view.Day = day.Format(time.DateOnly)
	view.TransactionID = pgconv.StringPtrFromPgtype(transactionID)
	view.CouponCode = pgconv.StringPtrFromPgtype(promoCode)
	view.Notes = pgconv.StringPtrFromPgtype(notes)
	view.ReviewEligible = appointment.Status(view.Status) == appointment.StatusCompleted

	return &view, nil
}

func (s *AppointmentReadStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*queries.AppointmentListItem, error) {
	const query = `
		SELECT a.id, sh.name, sv.name, a.day, a.start_at, a.end_at,
		       a.status, a.amount_cents, a.created_at
		FROM appointments a
		JOIN shops sh ON sh.id = a.shop_id
		JOIN services sv ON sv.id = a.service_id
		WHERE a.customer_id = $1
		ORDER BY a.created_at DESC`

	rows, err := s.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, infra.WrapPgErr("failed to list appointments", err)
	}
	defer rows.Close()

	items := make([]*queries.AppointmentListItem, 0)
	for rows.Next() {
		var item queries.AppointmentListItem
		var day time.Time
		err := rows.Scan(
			&item.ID, &item.ShopName, &item.ServiceName, &day,
			&item.StartAt, &item.EndAt, &item.Status, &item.AmountCents, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapPgErr("failed to scan appointment list item", err)
		}
		item.Day = day.Format(time.DateOnly)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr("failed to read appointment list", err)
	}

	return items, nil
}
