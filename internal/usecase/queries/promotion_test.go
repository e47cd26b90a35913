//go:build unit

package queries_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"shopbook/internal/domain/promotion"
	"shopbook/internal/infra"
	"shopbook/internal/pkg/clock"
	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePromotionStore struct {
	views map[string]*queries.PromotionView
}

func (f *fakePromotionStore) FindByShopAndCode(_ context.Context, shopID uuid.UUID, code string) (*queries.PromotionView, error) {
	if v, ok := f.views[shopID.String()+":"+code]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("promotion not found", nil, infra.KindNotFound)
}

func TestValidatePromotion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	shopID := uuid.New()
	serviceID := uuid.New()

	percent := 20.0
	store := &fakePromotionStore{views: map[string]*queries.PromotionView{
		shopID.String() + ":SPRING20": {
			ID:         uuid.New(),
			ShopID:     shopID,
			Code:       "SPRING20",
			PercentOff: &percent,
		},
	}}
	sut := queries.NewPromotionQueries(store, clock.NewMockClock(now))

	t.Run("valid coupon returns the quote", func(t *testing.T) {
		quote, err := sut.Validate(ctx, shopID, "SPRING20", []uuid.UUID{serviceID}, 50000)

		require.NoError(t, err)
		assert.Equal(t, int64(10000), quote.DiscountCents)
		assert.Equal(t, int64(40000), quote.PayableCents)
	})

	t.Run("lookup uses the normalized code", func(t *testing.T) {
		quote, err := sut.Validate(ctx, shopID, "  spring20 ", []uuid.UUID{serviceID}, 50000)

		require.NoError(t, err)
		assert.Equal(t, int64(10000), quote.DiscountCents)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := sut.Validate(ctx, shopID, "NOSUCH99", []uuid.UUID{serviceID}, 50000)

		require.ErrorIs(t, err, queries.ErrPromotionNotFound)
	})

	t.Run("malformed code is reported as not found", func(t *testing.T) {
		_, err := sut.Validate(ctx, shopID, strings.Repeat("X", 30), []uuid.UUID{serviceID}, 50000)

		require.ErrorIs(t, err, queries.ErrPromotionNotFound)
	})

	t.Run("domain rejection passes through", func(t *testing.T) {
		limit := int32(1)
		store.views[shopID.String()+":USEDUP"] = &queries.PromotionView{
			ID:         uuid.New(),
			ShopID:     shopID,
			Code:       "USEDUP",
			PercentOff: &percent,
			UsageLimit: &limit,
			UsedCount:  1,
		}

		_, err := sut.Validate(ctx, shopID, "USEDUP", []uuid.UUID{serviceID}, 50000)

		require.ErrorIs(t, err, promotion.ErrUsageLimitReached)
	})
}
