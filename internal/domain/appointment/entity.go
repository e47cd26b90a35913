package appointment

import (
	"errors"
	"time"

	"shopbook/internal/domain/service"
	"shopbook/internal/domain/shop"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration  = errors.New("service duration must be positive")
	ErrDiscountTooLarge = errors.New("discount exceeds the service price")
	ErrCorruptSlot      = errors.New("appointment slot has end before start")
)

// Appointment is the central aggregate. It is never deleted; terminal
// statuses are retained for history and review eligibility.
type Appointment struct {
	id         uuid.UUID
	shopID     uuid.UUID
	serviceID  uuid.UUID
	customerID uuid.UUID
	day        time.Time // shop-local midnight of the booked date
	slot       TimeSlot
	status     Status
	payment    Payment
	promotion  PromotionUse
	note       Note
	createdAt  time.Time
	updatedAt  time.Time
}

// NewAppointment builds the initial record for a booking. The end time is
// derived from the service duration exactly once, here; it is never
// recomputed afterwards. The payable amount is the service's effective
// price minus the promotion discount and must not be negative.
func NewAppointment(
	shopEntity *shop.Shop,
	svc *service.Service,
	customerID uuid.UUID,
	start time.Time,
	promo PromotionUse,
	method PaymentMethod,
	note Note,
	now time.Time,
) (*Appointment, error) {
	if svc.Duration() <= 0 {
		return nil, ErrInvalidDuration
	}

	slot, err := NewTimeSlot(start, start.Add(svc.Duration()))
	if err != nil {
		return nil, err
	}

	payable := svc.EffectivePriceCents() - promo.DiscountCents()
	amount, err := NewMoney(payable)
	if err != nil {
		return nil, ErrDiscountTooLarge
	}

	status := StatusPending
	if shopEntity.AutoConfirm() {
		status = StatusConfirmed
	}

	return &Appointment{
		id:         uuid.New(),
		shopID:     shopEntity.ID(),
		serviceID:  svc.ID(),
		customerID: customerID,
		day:        shopEntity.StartOfDay(start),
		slot:       slot,
		status:     status,
		payment:    NewPayment(method, amount),
		promotion:  promo,
		note:       note,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func Reconstruct(
	id, shopID, serviceID, customerID uuid.UUID,
	day time.Time,
	slot TimeSlot,
	status Status,
	payment Payment,
	promotion PromotionUse,
	note Note,
	createdAt, updatedAt time.Time,
) (*Appointment, error) {
	if !slot.start.Before(slot.end) {
		// Data corruption, not a user error; callers surface this as internal.
		return nil, ErrCorruptSlot
	}

	return &Appointment{
		id:         id,
		shopID:     shopID,
		serviceID:  serviceID,
		customerID: customerID,
		day:        day,
		slot:       slot,
		status:     status,
		payment:    payment,
		promotion:  promotion,
		note:       note,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

// OccupiesSlot reports whether the appointment still blocks its time window.
func (a *Appointment) OccupiesSlot() bool {
	return !a.status.IsTerminal()
}

// ReviewEligible is read by the review subsystem: only completed
// appointments may be reviewed.
func (a *Appointment) ReviewEligible() bool {
	return a.status == StatusCompleted
}

// CancelForPaymentFailure is the system compensation path after a charge
// fails post-reservation. It bypasses the actor-gated transition table:
// no user requested this cancellation.
func (a *Appointment) CancelForPaymentFailure(now time.Time) {
	a.status = StatusCancelled
	a.payment.status = PaymentFailed
	a.updatedAt = now
}

func (a *Appointment) RecordCapture(transactionID string, now time.Time) {
	a.payment.status = PaymentCaptured
	a.payment.transactionID = &transactionID
	a.updatedAt = now
}

func (a *Appointment) RecordChargeFailure(now time.Time) {
	a.payment.status = PaymentFailed
	a.updatedAt = now
}

func (a *Appointment) RecordRefund(now time.Time) {
	a.payment.status = PaymentRefunded
	a.updatedAt = now
}

func (a *Appointment) ID() uuid.UUID          { return a.id }
func (a *Appointment) ShopID() uuid.UUID      { return a.shopID }
func (a *Appointment) ServiceID() uuid.UUID   { return a.serviceID }
func (a *Appointment) CustomerID() uuid.UUID  { return a.customerID }
func (a *Appointment) Day() time.Time         { return a.day }
func (a *Appointment) Slot() TimeSlot         { return a.slot }
func (a *Appointment) Status() Status         { return a.status }
func (a *Appointment) Payment() Payment       { return a.payment }
func (a *Appointment) Promotion() PromotionUse { return a.promotion }
func (a *Appointment) Note() Note             { return a.note }
func (a *Appointment) CreatedAt() time.Time   { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time   { return a.updatedAt }
