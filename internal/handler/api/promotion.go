package api

import (
	"errors"
	"net/http"

	"shopbook/internal/domain/promotion"
	reqdto "shopbook/internal/handler/dto/request"
	resdto "shopbook/internal/handler/dto/response"
	"shopbook/internal/handler/httperr"
	"shopbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	promotions queries.PromotionQueries
}

func NewPromotionHandler(promotions queries.PromotionQueries) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// @Summary Validate coupon
// @Description Check whether a coupon applies and quote the discount, without spending a use
// @Tags promotions
// @Accept json
// @Produce json
// @Param request body request.ValidatePromotionRequest true "Validation request"
// @Success 200 {object} response.PromotionQuoteResponse
// @Failure 400 {object} httperr.Response
// @Router /promotions/validate [post]
func (h *PromotionHandler) Validate(c *gin.Context) {
	var req reqdto.ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	quote, err := h.promotions.Validate(c.Request.Context(), req.ShopID, req.CouponCode, req.ServiceIDs, req.TotalAmount)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrPromotionNotFound):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Coupon not found", nil)
		case isPromotionRejection(err):
			httperr.AbortWithError(c, http.StatusBadRequest, err, promotionRejectionMessage(err), nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPromotionQuote(quote))
}

func isPromotionRejection(err error) bool {
	return errors.Is(err, promotion.ErrNotYetActive) ||
		errors.Is(err, promotion.ErrExpired) ||
		errors.Is(err, promotion.ErrServiceNotEligible) ||
		errors.Is(err, promotion.ErrUsageLimitReached)
}

// promotionRejectionMessage surfaces the specific rejection reason so the
// caller can show it verbatim.
func promotionRejectionMessage(err error) string {
	switch {
	case errors.Is(err, promotion.ErrNotYetActive):
		return "Coupon is not yet active"
	case errors.Is(err, promotion.ErrExpired):
		return "Coupon has expired"
	case errors.Is(err, promotion.ErrServiceNotEligible):
		return "Coupon does not apply to this service"
	case errors.Is(err, promotion.ErrUsageLimitReached):
		return "Coupon usage limit reached"
	default:
		return "Coupon was rejected"
	}
}
