package request

import (
	"github.com/google/uuid"
)

type ValidatePromotionRequest struct {
	ShopID      uuid.UUID   `json:"shopId" binding:"required"`
	CouponCode  string      `json:"couponCode" binding:"required"`
	ServiceIDs  []uuid.UUID `json:"serviceIds" binding:"required,min=1"`
	TotalAmount int64       `json:"totalAmount" binding:"required,gt=0"`
}
