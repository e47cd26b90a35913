package repository

import (
	"context"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository struct {
	db db.DBTX
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{db: pool}
}

func (r *AppointmentRepository) Create(ctx context.Context, tx db.DBTX, a *appointment.Appointment) error {
	const query = `
		INSERT INTO appointments (
			id, shop_id, service_id, customer_id, day, start_at, end_at,
			status, payment_method, payment_status, amount_cents, transaction_id,
			promo_code, promo_discount_cents, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	var promoCode *string
	var promoDiscount int64
	if a.Promotion().Applied() {
		code := a.Promotion().Code()
		promoCode = &code
		promoDiscount = a.Promotion().DiscountCents()
	}

	var notes *string
	if !a.Note().IsEmpty() {
		value := a.Note().String()
		notes = &value
	}

	_, err := tx.Exec(ctx, query,
		a.ID(), a.ShopID(), a.ServiceID(), a.CustomerID(),
		a.Day(), a.Slot().Start(), a.Slot().End(),
		a.Status().String(), a.Payment().Method().String(), a.Payment().Status().String(),
		a.Payment().Amount().Cents(), a.Payment().TransactionID(),
		promoCode, promoDiscount, notes,
		a.CreatedAt(), a.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapPgErr("failed to create appointment", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	const query = `
		SELECT a.id, a.shop_id, a.service_id, a.customer_id, a.day, a.start_at, a.end_at,
		       a.status, a.payment_method, a.payment_status, a.amount_cents, a.transaction_id,
		       a.promo_code, a.promo_discount_cents, a.notes, a.created_at, a.updated_at,
		       s.timezone
		FROM appointments a
		JOIN shops s ON s.id = a.shop_id
		WHERE a.id = $1`

	var (
		apptID, shopID, serviceID, customerID uuid.UUID
		day, startAt, endAt                   time.Time
		status, method, paymentStatus         string
		amountCents, promoDiscount            int64
		transactionID, promoCode, notes       pgtype.Text
		createdAt, updatedAt                  time.Time
		timezone                              string
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&apptID, &shopID, &serviceID, &customerID, &day, &startAt, &endAt,
		&status, &method, &paymentStatus, &amountCents, &transactionID,
		&promoCode, &promoDiscount, &notes, &createdAt, &updatedAt,
		&timezone,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find appointment", err)
	}

	// The date column scans back as UTC midnight; the aggregate's day is the
	// shop-local midnight it was created with.
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt shop timezone", err)
	}
	year, month, dayOfMonth := day.Date()
	day = time.Date(year, month, dayOfMonth, 0, 0, 0, 0, loc)

	slot, err := appointment.NewTimeSlot(startAt, endAt)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt appointment slot", err)
	}
	amount, err := appointment.NewMoney(amountCents)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt appointment amount", err)
	}

	promo := appointment.NoPromotion()
	if code := pgconv.StringPtrFromPgtype(promoCode); code != nil {
		promo = appointment.AppliedPromotion(*code, promoDiscount)
	}

	var note appointment.Note
	if n := pgconv.StringPtrFromPgtype(notes); n != nil {
		note = appointment.NewNote(*n)
	}

	payment := appointment.ReconstructPayment(
		appointment.PaymentMethod(method),
		appointment.PaymentStatus(paymentStatus),
		amount,
		pgconv.StringPtrFromPgtype(transactionID),
	)

	appt, err := appointment.Reconstruct(
		apptID, shopID, serviceID, customerID,
		day, slot, appointment.Status(status), payment, promo, note,
		createdAt, updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt appointment record", err)
	}
	return appt, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tx db.DBTX, a *appointment.Appointment) error {
	const query = `
		UPDATE appointments
		SET status = $2, payment_status = $3, updated_at = $4
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		a.ID(), a.Status().String(), a.Payment().Status().String(), a.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapPgErr("failed to update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("appointment not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *AppointmentRepository) UpdatePayment(ctx context.Context, a *appointment.Appointment) error {
	const query = `
		UPDATE appointments
		SET payment_status = $2, transaction_id = $3, updated_at = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		a.ID(), a.Payment().Status().String(), a.Payment().TransactionID(), a.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapPgErr("failed to update appointment payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("appointment not found", nil, infra.KindNotFound)
	}
	return nil
}
