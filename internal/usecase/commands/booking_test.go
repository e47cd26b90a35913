//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"shopbook/internal/domain/promotion"
	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/config"
	"shopbook/internal/usecase/commands"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShopRepo struct {
	snap *commands.ShopSnapshot
}

func (f *fakeShopRepo) FindByID(_ context.Context, id uuid.UUID) (*commands.ShopSnapshot, error) {
	if f.snap != nil && f.snap.ID == id {
		return f.snap, nil
	}
	return nil, infra.WrapRepoErr("shop not found", nil, infra.KindNotFound)
}

type fakeServiceRepo struct {
	snap *commands.ServiceSnapshot
}

func (f *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*commands.ServiceSnapshot, error) {
	if f.snap != nil && f.snap.ID == id {
		return f.snap, nil
	}
	return nil, infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
}

type fakePromotionRepo struct {
	snap *commands.PromotionSnapshot
}

func (f *fakePromotionRepo) FindByShopAndCode(_ context.Context, _ uuid.UUID, code string) (*commands.PromotionSnapshot, error) {
	if f.snap != nil && f.snap.Code == code {
		return f.snap, nil
	}
	return nil, infra.WrapRepoErr("promotion not found", nil, infra.KindNotFound)
}

func (f *fakePromotionRepo) IncrementUsage(context.Context, db.DBTX, uuid.UUID) error {
	return nil
}

// fakeIdempotencyRepo replays the hash captured on the losing TryInsert so
// the in-progress branch sees a matching request.
type fakeIdempotencyRepo struct {
	insertErr    error
	record       *commands.IdempotencyRecord
	captured     string
	echoCaptured bool
}

func (f *fakeIdempotencyRepo) TryInsert(_ context.Context, _, _ uuid.UUID, _, requestHash string, _ time.Time) error {
	f.captured = requestHash
	return f.insertErr
}

func (f *fakeIdempotencyRepo) Get(context.Context, uuid.UUID, uuid.UUID) (*commands.IdempotencyRecord, error) {
	rec := *f.record
	if f.echoCaptured {
		rec.RequestHash = f.captured
	}
	return &rec, nil
}

func (f *fakeIdempotencyRepo) MarkCompleted(context.Context, db.DBTX, uuid.UUID, uuid.UUID, string, uuid.UUID) error {
	return nil
}

type fakeAvailability struct {
	slots []queries.SlotView
}

func (f *fakeAvailability) AvailableSlots(context.Context, uuid.UUID, uuid.UUID, string) ([]queries.SlotView, error) {
	return f.slots, nil
}

type fakeAppointmentQueries struct {
	view *queries.AppointmentView
}

func (f *fakeAppointmentQueries) GetByID(context.Context, uuid.UUID, uuid.UUID, string) (*queries.AppointmentView, error) {
	return f.view, nil
}

func (f *fakeAppointmentQueries) GetByIDSystem(context.Context, uuid.UUID) (*queries.AppointmentView, error) {
	return f.view, nil
}

func (f *fakeAppointmentQueries) ListByCustomer(context.Context, uuid.UUID) ([]*queries.AppointmentListItem, error) {
	return nil, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID, uuid.UUID, string) ([]queries.SlotView, bool) {
	return nil, false
}
func (noopCache) Set(context.Context, uuid.UUID, uuid.UUID, string, []queries.SlotView) {}
func (noopCache) Invalidate(context.Context, uuid.UUID, string)                         {}

type bookingFixture struct {
	shopID       uuid.UUID
	serviceID    uuid.UUID
	customerID   uuid.UUID
	shops        *fakeShopRepo
	services     *fakeServiceRepo
	promotions   *fakePromotionRepo
	idempotency  *fakeIdempotencyRepo
	availability *fakeAvailability
	appointments *fakeAppointmentQueries
	clock        *clock.MockClock
	sut          commands.BookingCommands
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	shopID := uuid.New()
	serviceID := uuid.New()

	f := &bookingFixture{
		shopID:     shopID,
		serviceID:  serviceID,
		customerID: uuid.New(),
		shops: &fakeShopRepo{snap: &commands.ShopSnapshot{
			ID:       shopID,
			OwnerID:  uuid.New(),
			Name:     "Corner Barber",
			Timezone: "UTC",
			Hours: []commands.HoursEntry{
				// 2026-03-10 is a Tuesday.
				{Weekday: time.Tuesday, OpenMin: 9 * 60, CloseMin: 17 * 60},
			},
		}},
		services: &fakeServiceRepo{snap: &commands.ServiceSnapshot{
			ID:          serviceID,
			ShopID:      shopID,
			Name:        "Haircut",
			DurationMin: 60,
			PriceCents:  5000,
			Active:      true,
		}},
		promotions:  &fakePromotionRepo{},
		idempotency: &fakeIdempotencyRepo{},
		availability: &fakeAvailability{slots: []queries.SlotView{
			{StartTime: "10:00", EndTime: "11:00"},
			{StartTime: "11:00", EndTime: "12:00"},
		}},
		appointments: &fakeAppointmentQueries{},
		clock:        clock.NewMockClock(time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)),
	}

	f.sut = commands.NewBookingCommands(
		f.shops, f.services, f.promotions,
		nil, nil,
		f.idempotency,
		nil, nil,
		f.availability, f.appointments, noopCache{},
		nil,
		f.clock,
		config.BookingConfig{
			SlotGranularity: time.Hour,
			IdempotencyTTL:  24 * time.Hour,
			Currency:        "inr",
		},
	)
	return f
}

func validInput(f *bookingFixture) commands.CreateAppointmentInput {
	return commands.CreateAppointmentInput{
		ShopID:        f.shopID,
		ServiceID:     f.serviceID,
		Day:           "2026-03-10",
		StartTime:     "10:00",
		PaymentMethod: "offline",
	}
}

func TestCreateAppointment_Idempotency(t *testing.T) {
	ctx := context.Background()
	duplicate := infra.WrapRepoErr("key exists", nil, infra.KindDuplicateKey)

	t.Run("completed key replays the original appointment", func(t *testing.T) {
		f := newBookingFixture(t)
		apptID := uuid.New()
		f.idempotency.insertErr = duplicate
		f.idempotency.record = &commands.IdempotencyRecord{
			Status:              "completed",
			ResultAppointmentID: &apptID,
		}
		f.appointments.view = &queries.AppointmentView{ID: apptID}

		result, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.NoError(t, err)
		assert.True(t, result.IsReplayed)
		assert.Equal(t, apptID, result.Appointment.ID)
	})

	t.Run("same request still processing", func(t *testing.T) {
		f := newBookingFixture(t)
		f.idempotency.insertErr = duplicate
		f.idempotency.record = &commands.IdempotencyRecord{Status: "processing"}
		f.idempotency.echoCaptured = true

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrIdempotencyInProgress)
	})

	t.Run("same key with different parameters", func(t *testing.T) {
		f := newBookingFixture(t)
		f.idempotency.insertErr = duplicate
		f.idempotency.record = &commands.IdempotencyRecord{
			Status:      "processing",
			RequestHash: "something else entirely",
		}

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrDuplicateRequest)
	})

	t.Run("completed key without a result is an internal error", func(t *testing.T) {
		f := newBookingFixture(t)
		f.idempotency.insertErr = duplicate
		f.idempotency.record = &commands.IdempotencyRecord{Status: "completed"}

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.Error(t, err)
	})
}

func TestCreateAppointment_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown shop", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.ShopID = uuid.New()

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrShopNotFound)
	})

	t.Run("unknown service", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.ServiceID = uuid.New()

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrServiceNotFound)
	})

	t.Run("inactive service", func(t *testing.T) {
		f := newBookingFixture(t)
		f.services.snap.Active = false

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrServiceNotFound)
	})

	t.Run("service belonging to another shop", func(t *testing.T) {
		f := newBookingFixture(t)
		f.services.snap.ShopID = uuid.New()

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrServiceNotFound)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.PaymentMethod = "cheque"

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrInvalidPaymentMethod)
	})

	t.Run("malformed day", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.Day = "10/03/2026"

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrInvalidTimeSlot)
	})
}

func TestCreateAppointment_SlotClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("valid future slot missing from the fresh list is taken", func(t *testing.T) {
		f := newBookingFixture(t)
		f.availability.slots = []queries.SlotView{{StartTime: "11:00", EndTime: "12:00"}}

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrSlotTaken)
	})

	t.Run("unpadded start time matches its padded slot", func(t *testing.T) {
		f := newBookingFixture(t)
		f.availability.slots = []queries.SlotView{{StartTime: "09:00", EndTime: "10:00"}}
		coupon := "NOSUCHCODE"
		input := validInput(f)
		input.StartTime = "9:00"
		input.CouponCode = &coupon

		// The unknown coupon stops the flow right after the slot check, so a
		// promotion error here means 9:00 was matched against the 09:00 view.
		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.NotErrorIs(t, err, commands.ErrSlotTaken)
		require.ErrorIs(t, err, commands.ErrPromotionNotFound)
	})

	t.Run("slot in the past is no longer valid", func(t *testing.T) {
		f := newBookingFixture(t)
		f.clock.Set(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
		f.availability.slots = nil

		_, err := f.sut.CreateAppointment(ctx, validInput(f), f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrSlotNoLongerValid)
	})

	t.Run("slot outside the operating window is no longer valid", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.StartTime = "18:00"

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrSlotNoLongerValid)
	})

	t.Run("slot running past closing is no longer valid", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.StartTime = "16:30"

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrSlotNoLongerValid)
	})

	t.Run("closed day is no longer valid", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.Day = "2026-03-08"

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrSlotNoLongerValid)
	})
}

func TestCreateAppointment_Promotion(t *testing.T) {
	ctx := context.Background()
	coupon := "SPRING20"

	t.Run("unknown coupon", func(t *testing.T) {
		f := newBookingFixture(t)
		input := validInput(f)
		input.CouponCode = &coupon

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrPromotionNotFound)
	})

	t.Run("malformed coupon is treated as unknown", func(t *testing.T) {
		f := newBookingFixture(t)
		bad := "no spaces allowed"
		input := validInput(f)
		input.CouponCode = &bad

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrPromotionNotFound)
	})

	t.Run("expired coupon is rejected with the reason", func(t *testing.T) {
		f := newBookingFixture(t)
		percent := 20.0
		expired := f.clock.Now().Add(-time.Hour)
		f.promotions.snap = &commands.PromotionSnapshot{
			ID:         uuid.New(),
			ShopID:     f.shopID,
			Code:       coupon,
			PercentOff: &percent,
			ValidTo:    &expired,
		}
		input := validInput(f)
		input.CouponCode = &coupon

		_, err := f.sut.CreateAppointment(ctx, input, f.customerID, uuid.New())

		require.ErrorIs(t, err, commands.ErrPromotionRejected)
		require.ErrorIs(t, err, promotion.ErrExpired)
	})
}
