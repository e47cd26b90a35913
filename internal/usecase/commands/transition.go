package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/domain/user"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/errs"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAppointmentNotFound = errs.New("appointment not found")
	ErrInvalidStatus       = errs.New("invalid status value")
	ErrUnauthorizedActor   = errs.New("requester may not act on this appointment")
)

type TransitionCommands interface {
	ChangeStatus(ctx context.Context, appointmentID uuid.UUID, newStatus string, requesterID uuid.UUID, role string) (*queries.AppointmentView, error)
}

type transitionCommandsImpl struct {
	appointments       AppointmentRepository
	shops              ShopRepository
	guard              SlotGuard
	notifications      NotificationRepository
	gateway            PaymentGateway
	appointmentQueries queries.AppointmentQueries
	cache              queries.AvailabilityCache
	db                 *pgxpool.Pool
	clock              clock.Clock
}

func NewTransitionCommands(
	appointments AppointmentRepository,
	shops ShopRepository,
	guard SlotGuard,
	notifications NotificationRepository,
	gateway PaymentGateway,
	appointmentQueries queries.AppointmentQueries,
	cache queries.AvailabilityCache,
	db *pgxpool.Pool,
	clk clock.Clock,
) TransitionCommands {
	return &transitionCommandsImpl{
		appointments:       appointments,
		shops:              shops,
		guard:              guard,
		notifications:      notifications,
		gateway:            gateway,
		appointmentQueries: appointmentQueries,
		cache:              cache,
		db:                 db,
		clock:              clk,
	}
}

func (t *transitionCommandsImpl) ChangeStatus(
	ctx context.Context,
	appointmentID uuid.UUID,
	newStatus string,
	requesterID uuid.UUID,
	role string,
) (*queries.AppointmentView, error) {
	to := appointment.Status(newStatus)
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}

	appt, err := t.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	actor, err := t.resolveActor(ctx, appt, requesterID, role)
	if err != nil {
		return nil, err
	}

	wasCaptured := appt.Payment().IsCaptured()

	// The single transition table decides legality; handlers never check
	// statuses themselves.
	if err := appt.TransitionTo(to, actor, t.clock.Now()); err != nil {
		return nil, err
	}

	if err := t.executeTransitionTransaction(ctx, appt); err != nil {
		return nil, err
	}

	if to.IsTerminal() {
		t.cache.Invalidate(ctx, appt.ShopID(), appt.Day().Format(time.DateOnly))
	}

	t.refundIfNeeded(ctx, appt, to, wasCaptured)

	return t.appointmentQueries.GetByIDSystem(ctx, appt.ID())
}

// The requester is the appointment's customer, the owning shop's owner, or
// an admin standing in for the owner; anyone else is rejected outright.
func (t *transitionCommandsImpl) resolveActor(
	ctx context.Context,
	appt *appointment.Appointment,
	requesterID uuid.UUID,
	role string,
) (appointment.Actor, error) {
	if requesterID == appt.CustomerID() {
		return appointment.ActorCustomer, nil
	}

	if role == user.RoleAdmin.String() {
		return appointment.ActorShopOwner, nil
	}

	shopSnap, err := t.shops.FindByID(ctx, appt.ShopID())
	if err != nil {
		return "", errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if requesterID == shopSnap.OwnerID {
		return appointment.ActorShopOwner, nil
	}

	return "", ErrUnauthorizedActor
}

// executeTransitionTransaction updates the status and, for terminal moves,
// releases the slot claim in the same transaction so a transition and the
// release can never interleave inconsistently.
func (t *transitionCommandsImpl) executeTransitionTransaction(ctx context.Context, appt *appointment.Appointment) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transition transaction", "error", rollbackErr)
		}
	}()

	if err := t.appointments.UpdateStatus(ctx, tx, appt); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if appt.Status().IsTerminal() {
		if err := t.guard.Release(ctx, tx, appt.ID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID(),
		"type":           "appointment_status_changed",
		"status":         appt.Status().String(),
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := t.notifications.CreateJob(ctx, tx, "email", "appointment_status_changed", payload, t.clock.Now()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// refundIfNeeded requests a refund when a captured payment is cancelled or
// rejected. The transition itself has already committed; a failed refund is
// logged for out-of-band retry rather than undoing the status change.
func (t *transitionCommandsImpl) refundIfNeeded(
	ctx context.Context,
	appt *appointment.Appointment,
	to appointment.Status,
	wasCaptured bool,
) {
	if !wasCaptured || (to != appointment.StatusCancelled && to != appointment.StatusRejected) {
		return
	}

	transactionID := appt.Payment().TransactionID()
	if transactionID == nil {
		slog.Error("captured payment has no transaction id", "appointment_id", appt.ID())
		return
	}

	if err := t.gateway.Refund(ctx, *transactionID, appt.Payment().Amount().Cents()); err != nil {
		slog.Warn("refund request failed", "appointment_id", appt.ID(), "error", err)
		return
	}

	appt.RecordRefund(t.clock.Now())
	if err := t.appointments.UpdatePayment(ctx, appt); err != nil {
		slog.Warn("failed to record refund", "appointment_id", appt.ID(), "error", err)
	}
}
