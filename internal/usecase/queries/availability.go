package queries

import (
	"context"
	"time"

	"shopbook/internal/domain/appointment"
	"shopbook/internal/domain/schedule"
	"shopbook/internal/domain/service"
	"shopbook/internal/domain/shop"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/config"
	"shopbook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrShopNotFound    = errs.New("shop not found")
	ErrServiceNotFound = errs.New("service not found")
	ErrInvalidDate     = errs.New("invalid date")
	ErrCorruptHours    = errs.New("corrupt operating hours data")
)

type ShopReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShopView, error)
}

type ServiceReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceView, error)
}

type ClaimReadStore interface {
	BusyIntervals(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]BusyInterval, error)
}

// AvailabilityCache is a best-effort read cache; misses and errors fall
// through to the database silently. Invalidate is called by the write side
// whenever a slot is claimed or released for a (shop, day).
type AvailabilityCache interface {
	Get(ctx context.Context, shopID, serviceID uuid.UUID, day string) ([]SlotView, bool)
	Set(ctx context.Context, shopID, serviceID uuid.UUID, day string, slots []SlotView)
	Invalidate(ctx context.Context, shopID uuid.UUID, day string)
}

type AvailabilityQueries interface {
	AvailableSlots(ctx context.Context, shopID, serviceID uuid.UUID, day string) ([]SlotView, error)
}

type availabilityQueriesImpl struct {
	shops       ShopReadStore
	services    ServiceReadStore
	claims      ClaimReadStore
	cache       AvailabilityCache
	clock       clock.Clock
	granularity time.Duration
}

func NewAvailabilityQueries(
	shops ShopReadStore,
	services ServiceReadStore,
	claims ClaimReadStore,
	cache AvailabilityCache,
	clk clock.Clock,
	cfg config.BookingConfig,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		shops:       shops,
		services:    services,
		claims:      claims,
		cache:       cache,
		clock:       clk,
		granularity: cfg.SlotGranularity,
	}
}

func (q *availabilityQueriesImpl) AvailableSlots(
	ctx context.Context,
	shopID, serviceID uuid.UUID,
	day string,
) ([]SlotView, error) {
	date, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return nil, ErrInvalidDate
	}

	shopEntity, err := q.loadShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	svc, err := q.loadService(ctx, shopID, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Bookable() {
		return []SlotView{}, nil
	}

	if cached, ok := q.cache.Get(ctx, shopID, serviceID, day); ok {
		return cached, nil
	}

	start, end, open := shopEntity.WindowOn(date)
	if !open {
		return []SlotView{}, nil
	}

	busy, err := q.claims.BusyIntervals(ctx, shopID, start, end)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load busy intervals")
	}

	slots := schedule.Available(
		schedule.Window{Start: start, End: end},
		svc.Duration(),
		q.granularity,
		toSlots(busy),
		q.clock.Now(),
	)

	views := make([]SlotView, len(slots))
	for i, s := range slots {
		views[i] = SlotView{
			StartTime: s.Start().In(shopEntity.Location()).Format("15:04"),
			EndTime:   s.End().In(shopEntity.Location()).Format("15:04"),
		}
	}

	q.cache.Set(ctx, shopID, serviceID, day, views)
	return views, nil
}

func (q *availabilityQueriesImpl) loadShop(ctx context.Context, shopID uuid.UUID) (*shop.Shop, error) {
	view, err := q.shops.FindByID(ctx, shopID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, errs.Mark(err, ErrShopNotFound)
	}
	return BuildShop(view)
}

func (q *availabilityQueriesImpl) loadService(ctx context.Context, shopID, serviceID uuid.UUID) (*service.Service, error) {
	view, err := q.services.FindByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, errs.Mark(err, ErrServiceNotFound)
	}
	if view.ShopID != shopID {
		return nil, ErrServiceNotFound
	}
	return service.NewService(
		view.ID, view.ShopID, view.Name,
		view.DurationMin, view.PriceCents, view.DiscountedPriceCents, view.Active,
	)
}

// BuildShop reconstructs the domain shop from its read view.
func BuildShop(view *ShopView) (*shop.Shop, error) {
	hours := shop.WeeklyHours{}
	for _, h := range view.Hours {
		open, err := shop.TimeOfDayFromMinutes(int(h.OpenMin))
		if err != nil {
			return nil, errs.Mark(err, ErrCorruptHours)
		}
		close, err := shop.TimeOfDayFromMinutes(int(h.CloseMin))
		if err != nil {
			return nil, errs.Mark(err, ErrCorruptHours)
		}
		dh, err := shop.NewDayHours(open, close)
		if err != nil {
			return nil, errs.Mark(err, ErrCorruptHours)
		}
		hours[h.Weekday] = dh
	}

	return shop.NewShop(view.ID, view.OwnerID, view.Name, view.Timezone, view.AutoConfirm, hours)
}

func toSlots(busy []BusyInterval) []appointment.TimeSlot {
	slots := make([]appointment.TimeSlot, 0, len(busy))
	for _, b := range busy {
		slot, err := appointment.NewTimeSlot(b.Start, b.End)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}
