package response

import (
	"shopbook/internal/usecase/queries"
)

type PromotionQuoteResponse struct {
	DiscountCents int64 `json:"discount"`
	PayableCents  int64 `json:"payable"`
}

func FromPromotionQuote(quote *queries.PromotionQuote) *PromotionQuoteResponse {
	return &PromotionQuoteResponse{
		DiscountCents: quote.DiscountCents,
		PayableCents:  quote.PayableCents,
	}
}
