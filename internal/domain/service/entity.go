package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNegativePrice = errors.New("service price cannot be negative")

type Service struct {
	id                   uuid.UUID
	shopID               uuid.UUID
	name                 string
	durationMin          int32
	priceCents           int64
	discountedPriceCents *int64
	active               bool
}

func NewService(
	id, shopID uuid.UUID,
	name string,
	durationMin int32,
	priceCents int64,
	discountedPriceCents *int64,
	active bool,
) (*Service, error) {
	if priceCents < 0 || (discountedPriceCents != nil && *discountedPriceCents < 0) {
		return nil, ErrNegativePrice
	}

	return &Service{
		id:                   id,
		shopID:               shopID,
		name:                 name,
		durationMin:          durationMin,
		priceCents:           priceCents,
		discountedPriceCents: discountedPriceCents,
		active:               active,
	}, nil
}

// Bookable reports whether the service can produce availability at all.
// A non-positive duration is a data condition and yields no slots rather
// than an error.
func (s *Service) Bookable() bool {
	return s.active && s.durationMin > 0
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.durationMin) * time.Minute
}

// EffectivePriceCents is the price copied into an appointment at booking
// time: the discounted price when the shop set one, the base price otherwise.
func (s *Service) EffectivePriceCents() int64 {
	if s.discountedPriceCents != nil {
		return *s.discountedPriceCents
	}
	return s.priceCents
}

func (s *Service) ID() uuid.UUID                { return s.id }
func (s *Service) ShopID() uuid.UUID            { return s.shopID }
func (s *Service) Name() string                 { return s.name }
func (s *Service) DurationMin() int32           { return s.durationMin }
func (s *Service) PriceCents() int64            { return s.priceCents }
func (s *Service) DiscountedPriceCents() *int64 { return s.discountedPriceCents }
func (s *Service) Active() bool                 { return s.active }
