package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/domain/promotion"
	"shopbook/internal/domain/service"
	"shopbook/internal/domain/shop"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/config"
	"shopbook/internal/pkg/errs"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrShopNotFound            = errs.New("shop not found")
	ErrServiceNotFound         = errs.New("service not found")
	ErrInvalidTimeSlot         = errs.New("invalid time slot")
	ErrInvalidPaymentMethod    = errs.New("invalid payment method")
	ErrSlotTaken               = errs.New("slot already taken")
	ErrSlotNoLongerValid       = errs.New("slot no longer valid")
	ErrPromotionNotFound       = errs.New("promotion not found")
	ErrPromotionRejected       = errs.New("promotion rejected")
	ErrDuplicateRequest        = errs.New("duplicate request with different parameters")
	ErrIdempotencyInProgress   = errs.New("request is already being processed")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrPaymentFailed           = errs.New("payment failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type CreateAppointmentInput struct {
	ShopID        uuid.UUID
	ServiceID     uuid.UUID
	Day           string // 2006-01-02
	StartTime     string // 15:04, shop-local
	PaymentMethod string
	Notes         *string
	CouponCode    *string
}

type CreateAppointmentResult struct {
	Appointment *queries.AppointmentView
	IsReplayed  bool
}

type BookingCommands interface {
	CreateAppointment(ctx context.Context, input CreateAppointmentInput, customerID, idempotencyKey uuid.UUID) (*CreateAppointmentResult, error)
}

type bookingCommandsImpl struct {
	shops              ShopRepository
	services           ServiceRepository
	promotions         PromotionRepository
	appointments       AppointmentRepository
	guard              SlotGuard
	idempotency        IdempotencyRepository
	notifications      NotificationRepository
	gateway            PaymentGateway
	availability       queries.AvailabilityQueries
	appointmentQueries queries.AppointmentQueries
	cache              queries.AvailabilityCache
	db                 *pgxpool.Pool
	clock              clock.Clock
	cfg                config.BookingConfig
}

func NewBookingCommands(
	shops ShopRepository,
	services ServiceRepository,
	promotions PromotionRepository,
	appointments AppointmentRepository,
	guard SlotGuard,
	idempotency IdempotencyRepository,
	notifications NotificationRepository,
	gateway PaymentGateway,
	availability queries.AvailabilityQueries,
	appointmentQueries queries.AppointmentQueries,
	cache queries.AvailabilityCache,
	db *pgxpool.Pool,
	clk clock.Clock,
	cfg config.BookingConfig,
) BookingCommands {
	return &bookingCommandsImpl{
		shops:              shops,
		services:           services,
		promotions:         promotions,
		appointments:       appointments,
		guard:              guard,
		idempotency:        idempotency,
		notifications:      notifications,
		gateway:            gateway,
		availability:       availability,
		appointmentQueries: appointmentQueries,
		cache:              cache,
		db:                 db,
		clock:              clk,
		cfg:                cfg,
	}
}

func (r *bookingCommandsImpl) CreateAppointment(
	ctx context.Context,
	input CreateAppointmentInput,
	customerID, idempotencyKey uuid.UUID,
) (*CreateAppointmentResult, error) {
	requestHash := r.calculateRequestHash(input, customerID)
	expiresAt := r.clock.Now().Add(r.cfg.IdempotencyTTL)

	existing, err := r.handleIdempotency(ctx, idempotencyKey, customerID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CreateAppointmentResult{Appointment: existing, IsReplayed: true}, nil
	}

	view, err := r.createNewAppointment(ctx, input, customerID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &CreateAppointmentResult{Appointment: view, IsReplayed: false}, nil
}

func (r *bookingCommandsImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, customerID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.AppointmentView, error) {
	err := r.idempotency.TryInsert(ctx, idempotencyKey, customerID, "POST /appointments", requestHash, expiresAt)
	if err == nil {
		// Fresh key: this request owns the processing record.
		return nil, nil
	}
	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	record, err := r.idempotency.Get(ctx, idempotencyKey, customerID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	switch record.Status {
	case "completed":
		if record.ResultAppointmentID == nil {
			return nil, errs.New("completed request missing result appointment ID")
		}
		// Replay: return the original appointment, system-level access.
		return r.appointmentQueries.GetByIDSystem(ctx, *record.ResultAppointmentID)

	case "processing":
		if record.RequestHash != requestHash {
			return nil, ErrDuplicateRequest
		}
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (r *bookingCommandsImpl) createNewAppointment(
	ctx context.Context,
	input CreateAppointmentInput,
	customerID, idempotencyKey uuid.UUID,
) (*queries.AppointmentView, error) {
	shopEntity, err := r.loadShop(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}

	svc, err := r.loadService(ctx, input.ShopID, input.ServiceID)
	if err != nil {
		return nil, err
	}

	method := appointment.PaymentMethod(input.PaymentMethod)
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	startAt, err := r.verifySlotStillAvailable(ctx, input, shopEntity, svc)
	if err != nil {
		return nil, err
	}

	promoUse, promoID, err := r.evaluatePromotion(ctx, input, svc)
	if err != nil {
		return nil, err
	}

	var note appointment.Note
	if input.Notes != nil {
		note = appointment.NewNote(*input.Notes)
	}

	appt, err := appointment.NewAppointment(shopEntity, svc, customerID, startAt, promoUse, method, note, r.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	if err := r.executeBookingTransaction(ctx, appt, promoID, idempotencyKey, customerID); err != nil {
		return nil, err
	}

	day := appt.Day().Format(time.DateOnly)
	r.cache.Invalidate(ctx, appt.ShopID(), day)

	if err := r.capturePayment(ctx, appt); err != nil {
		r.cache.Invalidate(ctx, appt.ShopID(), day)
		return nil, err
	}

	// Read-after-write: return the complete view from the read store.
	view, err := r.appointmentQueries.GetByIDSystem(ctx, appt.ID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

// verifySlotStillAvailable re-checks the requested slot against a fresh
// availability computation: the client's slot list may be stale. A missing
// slot is classified as no-longer-valid (hours changed, past start) or
// taken (someone else holds it); the claim insert remains the final word.
func (r *bookingCommandsImpl) verifySlotStillAvailable(
	ctx context.Context,
	input CreateAppointmentInput,
	shopEntity *shop.Shop,
	svc *service.Service,
) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, input.Day)
	if err != nil {
		return time.Time{}, ErrInvalidTimeSlot
	}

	startTOD, err := shop.ParseTimeOfDay(input.StartTime)
	if err != nil {
		return time.Time{}, ErrInvalidTimeSlot
	}
	startAt := shopEntity.SlotAt(date, startTOD)

	slots, err := r.availability.AvailableSlots(ctx, shopEntity.ID(), svc.ID(), input.Day)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrShopNotFound):
			return time.Time{}, ErrShopNotFound
		case errors.Is(err, queries.ErrServiceNotFound):
			return time.Time{}, ErrServiceNotFound
		case errors.Is(err, queries.ErrInvalidDate):
			return time.Time{}, ErrInvalidTimeSlot
		default:
			return time.Time{}, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	// Slot views carry canonical zero-padded HH:MM; the parsed time of day
	// covers clients that send an unpadded hour.
	want := startTOD.String()
	for _, s := range slots {
		if s.StartTime == want {
			return startAt, nil
		}
	}

	windowStart, windowEnd, open := shopEntity.WindowOn(date)
	endAt := startAt.Add(svc.Duration())
	switch {
	case !open, startAt.Before(r.clock.Now()), startAt.Before(windowStart), endAt.After(windowEnd):
		return time.Time{}, ErrSlotNoLongerValid
	default:
		return time.Time{}, ErrSlotTaken
	}
}

func (r *bookingCommandsImpl) evaluatePromotion(
	ctx context.Context,
	input CreateAppointmentInput,
	svc *service.Service,
) (appointment.PromotionUse, *uuid.UUID, error) {
	if input.CouponCode == nil {
		return appointment.NoPromotion(), nil, nil
	}

	code, err := promotion.NewCode(*input.CouponCode)
	if err != nil {
		return appointment.NoPromotion(), nil, ErrPromotionNotFound
	}

	snap, err := r.promotions.FindByShopAndCode(ctx, input.ShopID, code.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return appointment.NoPromotion(), nil, ErrPromotionNotFound
		}
		return appointment.NoPromotion(), nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	promo, err := promotion.NewPromotion(
		snap.ID, snap.ShopID, snap.Code,
		snap.AmountOffCents, snap.PercentOff,
		snap.ServiceIDs, snap.ValidFrom, snap.ValidTo,
		snap.UsageLimit, snap.UsedCount,
	)
	if err != nil {
		return appointment.NoPromotion(), nil, errs.Mark(err, ErrPromotionRejected)
	}

	discount, err := promo.Evaluate(r.clock.Now(), []uuid.UUID{svc.ID()}, svc.EffectivePriceCents())
	if err != nil {
		return appointment.NoPromotion(), nil, errs.Mark(err, ErrPromotionRejected)
	}

	id := snap.ID
	return appointment.AppliedPromotion(code.String(), discount), &id, nil
}

// executeBookingTransaction is the critical section: the claim insert and
// the appointment insert commit or roll back together, so a failed booking
// never leaves a dangling claim. No external call happens inside it.
func (r *bookingCommandsImpl) executeBookingTransaction(
	ctx context.Context,
	appt *appointment.Appointment,
	promoID *uuid.UUID,
	idempotencyKey, customerID uuid.UUID,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback booking transaction", "error", rollbackErr)
		}
	}()

	if err := r.guard.Reserve(ctx, tx, appt.ShopID(), appt.Day(), appt.Slot(), appt.ID()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return ErrSlotTaken
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := r.appointments.Create(ctx, tx, appt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if promoID != nil {
		if err := r.promotions.IncrementUsage(ctx, tx, *promoID); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(promotion.ErrUsageLimitReached, ErrPromotionRejected)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	if err := r.createBookingNotification(ctx, tx, appt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	responseHash := r.calculateIDHash(appt.ID())
	if err := r.idempotency.MarkCompleted(ctx, tx, idempotencyKey, customerID, responseHash, appt.ID()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// capturePayment runs after the reservation has committed. A failed charge
// is compensated by cancelling the appointment and releasing its claim, so
// the slot returns to the available pool.
func (r *bookingCommandsImpl) capturePayment(ctx context.Context, appt *appointment.Appointment) error {
	if appt.Payment().Method() == appointment.PaymentOffline {
		return nil
	}

	transactionID, err := r.gateway.Charge(ctx, ChargeRequest{
		AppointmentID: appt.ID(),
		Method:        appt.Payment().Method(),
		AmountCents:   appt.Payment().Amount().Cents(),
		Currency:      r.cfg.Currency,
		Description:   "appointment " + appt.ID().String(),
	})
	if err != nil {
		slog.Warn("payment charge failed, releasing slot", "appointment_id", appt.ID(), "error", err)
		if compErr := r.compensateFailedCharge(ctx, appt); compErr != nil {
			slog.Error("failed to compensate failed charge", "appointment_id", appt.ID(), "error", compErr)
		}
		return errs.Mark(err, ErrPaymentFailed)
	}

	appt.RecordCapture(transactionID, r.clock.Now())
	if err := r.appointments.UpdatePayment(ctx, appt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (r *bookingCommandsImpl) compensateFailedCharge(ctx context.Context, appt *appointment.Appointment) error {
	appt.CancelForPaymentFailure(r.clock.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback compensation transaction", "error", rollbackErr)
		}
	}()

	if err := r.appointments.UpdateStatus(ctx, tx, appt); err != nil {
		return err
	}
	if err := r.guard.Release(ctx, tx, appt.ID()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *bookingCommandsImpl) createBookingNotification(ctx context.Context, tx pgx.Tx, appt *appointment.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID(),
		"type":           "appointment_created",
		"status":         appt.Status().String(),
	})
	if err != nil {
		return err
	}
	return r.notifications.CreateJob(ctx, tx, "email", "appointment_created", payload, r.clock.Now())
}

func (r *bookingCommandsImpl) loadShop(ctx context.Context, shopID uuid.UUID) (*shop.Shop, error) {
	snap, err := r.shops.FindByID(ctx, shopID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, errs.Mark(err, ErrShopNotFound)
	}
	return snapshotToShop(snap)
}

func (r *bookingCommandsImpl) loadService(ctx context.Context, shopID, serviceID uuid.UUID) (*service.Service, error) {
	snap, err := r.services.FindByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, errs.Mark(err, ErrServiceNotFound)
	}
	if snap.ShopID != shopID || !snap.Active {
		return nil, ErrServiceNotFound
	}
	return snapshotToService(snap)
}

func (r *bookingCommandsImpl) calculateRequestHash(input CreateAppointmentInput, customerID uuid.UUID) string {
	data, _ := json.Marshal(struct {
		CreateAppointmentInput
		CustomerID uuid.UUID
	}{input, customerID})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *bookingCommandsImpl) calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
