package promotion

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rejection reasons, checked in a fixed order with the first failure
// winning: validity window, service eligibility, usage limit.
var (
	ErrNotYetActive       = errors.New("coupon is not yet active")
	ErrExpired            = errors.New("coupon has expired")
	ErrServiceNotEligible = errors.New("coupon does not apply to this service")
	ErrUsageLimitReached  = errors.New("coupon usage limit reached")
)

type Promotion struct {
	id         uuid.UUID
	shopID     uuid.UUID
	code       Code
	discount   Discount
	serviceIDs []uuid.UUID // empty set = unrestricted
	validFrom  *time.Time
	validTo    *time.Time
	usageLimit *int32
	usedCount  int32
}

func NewPromotion(
	id, shopID uuid.UUID,
	code string,
	amountOffCents *int64,
	percentOff *float64,
	serviceIDs []uuid.UUID,
	validFrom, validTo *time.Time,
	usageLimit *int32,
	usedCount int32,
) (*Promotion, error) {
	promoCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	discount, err := NewDiscount(amountOffCents, percentOff)
	if err != nil {
		return nil, err
	}

	return &Promotion{
		id:         id,
		shopID:     shopID,
		code:       promoCode,
		discount:   discount,
		serviceIDs: serviceIDs,
		validFrom:  validFrom,
		validTo:    validTo,
		usageLimit: usageLimit,
		usedCount:  usedCount,
	}, nil
}

// Evaluate reports the discount the promotion would grant for a candidate
// order, or the first failing rejection reason. It never mutates the usage
// counter; the increment happens atomically alongside booking persistence.
func (p *Promotion) Evaluate(now time.Time, serviceIDs []uuid.UUID, subtotalCents int64) (int64, error) {
	if p.validFrom != nil && now.Before(*p.validFrom) {
		return 0, ErrNotYetActive
	}
	if p.validTo != nil && now.After(*p.validTo) {
		return 0, ErrExpired
	}

	if !p.eligibleFor(serviceIDs) {
		return 0, ErrServiceNotEligible
	}

	if p.usageLimit != nil && p.usedCount >= *p.usageLimit {
		return 0, ErrUsageLimitReached
	}

	return p.discount.AmountFor(subtotalCents), nil
}

func (p *Promotion) eligibleFor(serviceIDs []uuid.UUID) bool {
	if len(p.serviceIDs) == 0 {
		return true
	}
	for _, eligible := range p.serviceIDs {
		for _, requested := range serviceIDs {
			if eligible == requested {
				return true
			}
		}
	}
	return false
}

func (p *Promotion) ID() uuid.UUID         { return p.id }
func (p *Promotion) ShopID() uuid.UUID     { return p.shopID }
func (p *Promotion) Code() Code            { return p.code }
func (p *Promotion) Discount() Discount    { return p.discount }
func (p *Promotion) ValidFrom() *time.Time { return p.validFrom }
func (p *Promotion) ValidTo() *time.Time   { return p.validTo }
func (p *Promotion) UsageLimit() *int32    { return p.usageLimit }
func (p *Promotion) UsedCount() int32      { return p.usedCount }
