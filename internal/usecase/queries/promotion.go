package queries

import (
	"context"

	"shopbook/internal/domain/promotion"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrPromotionNotFound = errs.New("promotion not found")

type PromotionReadStore interface {
	FindByShopAndCode(ctx context.Context, shopID uuid.UUID, code string) (*PromotionView, error)
}

// PromotionQueries reports whether a coupon would apply, without spending
// it. The usage counter moves only when a booking actually persists.
type PromotionQueries interface {
	Validate(ctx context.Context, shopID uuid.UUID, code string, serviceIDs []uuid.UUID, subtotalCents int64) (*PromotionQuote, error)
}

type promotionQueriesImpl struct {
	promotions PromotionReadStore
	clock      clock.Clock
}

func NewPromotionQueries(promotions PromotionReadStore, clk clock.Clock) PromotionQueries {
	return &promotionQueriesImpl{promotions: promotions, clock: clk}
}

func (q *promotionQueriesImpl) Validate(
	ctx context.Context,
	shopID uuid.UUID,
	code string,
	serviceIDs []uuid.UUID,
	subtotalCents int64,
) (*PromotionQuote, error) {
	normalized, err := promotion.NewCode(code)
	if err != nil {
		return nil, ErrPromotionNotFound
	}

	view, err := q.promotions.FindByShopAndCode(ctx, shopID, normalized.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, errs.Wrap(err, "failed to load promotion")
	}

	promo, err := BuildPromotion(view)
	if err != nil {
		return nil, err
	}

	discount, err := promo.Evaluate(q.clock.Now(), serviceIDs, subtotalCents)
	if err != nil {
		// Domain rejection reasons pass through for the caller to map.
		return nil, err
	}

	return &PromotionQuote{
		DiscountCents: discount,
		PayableCents:  subtotalCents - discount,
	}, nil
}

// BuildPromotion reconstructs the domain promotion from its read view.
func BuildPromotion(view *PromotionView) (*promotion.Promotion, error) {
	return promotion.NewPromotion(
		view.ID, view.ShopID, view.Code,
		view.AmountOffCents, view.PercentOff,
		view.ServiceIDs,
		view.ValidFrom, view.ValidTo,
		view.UsageLimit, view.UsedCount,
	)
}
