package queries

import (
	"context"

	"shopbook/internal/domain/user"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errs.New("appointment not found")
	ErrAccessDenied        = errs.New("access denied")
)

type AppointmentViewReadStore interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*AppointmentView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*AppointmentListItem, error)
}

type AppointmentQueries interface {
	// GetByID enforces access: the booking customer, the shop owner, or an
	// admin may read an appointment.
	GetByID(ctx context.Context, id, requesterID uuid.UUID, role string) (*AppointmentView, error)
	// GetByIDSystem skips access checks; used for read-after-write and
	// idempotent replay inside the write side.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*AppointmentView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*AppointmentListItem, error)
}

type appointmentQueriesImpl struct {
	appointments AppointmentViewReadStore
}

func NewAppointmentQueries(appointments AppointmentViewReadStore) AppointmentQueries {
	return &appointmentQueriesImpl{appointments: appointments}
}

func (q *appointmentQueriesImpl) GetByID(ctx context.Context, id, requesterID uuid.UUID, role string) (*AppointmentView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	if requesterID != view.CustomerID && requesterID != view.ShopOwnerID && role != user.RoleAdmin.String() {
		return nil, ErrAccessDenied
	}
	return view, nil
}

func (q *appointmentQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*AppointmentView, error) {
	view, err := q.appointments.FindViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, errs.Wrap(err, "failed to load appointment")
	}
	return view, nil
}

func (q *appointmentQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*AppointmentListItem, error) {
	items, err := q.appointments.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list appointments")
	}
	return items, nil
}
