package commands

import (
	"context"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/domain/service"
	"shopbook/internal/domain/shop"
	"shopbook/internal/infra/db"

	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on Read-side query types (CQRS separation)

type HoursEntry struct {
	Weekday  time.Weekday
	OpenMin  int32
	CloseMin int32
}

type ShopSnapshot struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Timezone    string
	AutoConfirm bool
	Hours       []HoursEntry
}

type ServiceSnapshot struct {
	ID                   uuid.UUID
	ShopID               uuid.UUID
	Name                 string
	DurationMin          int32
	PriceCents           int64
	DiscountedPriceCents *int64
	Active               bool
}

type PromotionSnapshot struct {
	ID             uuid.UUID
	ShopID         uuid.UUID
	Code           string
	AmountOffCents *int64
	PercentOff     *float64
	ServiceIDs     []uuid.UUID
	ValidFrom      *time.Time
	ValidTo        *time.Time
	UsageLimit     *int32
	UsedCount      int32
}

type IdempotencyRecord struct {
	Key                 uuid.UUID
	CustomerID          uuid.UUID
	Status              string
	RequestHash         string
	ResultAppointmentID *uuid.UUID
	ExpiresAt           time.Time
}

type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShopSnapshot, error)
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
}

type PromotionRepository interface {
	FindByShopAndCode(ctx context.Context, shopID uuid.UUID, code string) (*PromotionSnapshot, error)
	// IncrementUsage bumps the usage counter, guarded by the usage limit in
	// the same statement; a CONFLICT kind means the limit was exhausted
	// between evaluation and persistence.
	IncrementUsage(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, tx db.DBTX, a *appointment.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, a *appointment.Appointment) error
	UpdatePayment(ctx context.Context, a *appointment.Appointment) error
}

// SlotGuard is the exclusive-reservation primitive. Reserve claims a
// (shop, day, interval) atomically; when two callers race for overlapping
// intervals exactly one insert survives and the loser sees a CONFLICT kind.
// Release is idempotent: releasing an already-free slot is a no-op.
type SlotGuard interface {
	Reserve(ctx context.Context, tx db.DBTX, shopID uuid.UUID, day time.Time, slot appointment.TimeSlot, appointmentID uuid.UUID) error
	Release(ctx context.Context, tx db.DBTX, appointmentID uuid.UUID) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, customerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, key, customerID uuid.UUID) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, key, customerID uuid.UUID, responseHash string, appointmentID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type ChargeRequest struct {
	AppointmentID uuid.UUID
	Method        appointment.PaymentMethod
	AmountCents   int64
	Currency      string
	Description   string
}

// PaymentGateway is the opaque payment collaborator. It is only ever
// invoked after the reservation transaction has committed, never while the
// slot claim is being taken.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (transactionID string, err error)
	Refund(ctx context.Context, transactionID string, amountCents int64) error
}

func snapshotToShop(s *ShopSnapshot) (*shop.Shop, error) {
	hours := shop.WeeklyHours{}
	for _, h := range s.Hours {
		open, err := shop.TimeOfDayFromMinutes(int(h.OpenMin))
		if err != nil {
			return nil, err
		}
		close, err := shop.TimeOfDayFromMinutes(int(h.CloseMin))
		if err != nil {
			return nil, err
		}
		dh, err := shop.NewDayHours(open, close)
		if err != nil {
			return nil, err
		}
		hours[h.Weekday] = dh
	}
	return shop.NewShop(s.ID, s.OwnerID, s.Name, s.Timezone, s.AutoConfirm, hours)
}

func snapshotToService(s *ServiceSnapshot) (*service.Service, error) {
	return service.NewService(
		s.ID, s.ShopID, s.Name,
		s.DurationMin, s.PriceCents, s.DiscountedPriceCents, s.Active,
	)
}
