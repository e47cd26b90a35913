package request

import (
	"strings"

	"shopbook/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateAppointmentRequest struct {
	ShopID        uuid.UUID `json:"shopId" binding:"required"`
	ServiceID     uuid.UUID `json:"serviceId" binding:"required"`
	Day           string    `json:"date" binding:"required,dateonly"`
	StartTime     string    `json:"startTime" binding:"required,hhmm"`
	// EndTime is accepted for symmetry with the slot listing but the stored
	// end is always derived from the service duration.
	EndTime       *string   `json:"endTime,omitempty" binding:"omitempty,hhmm"`
	PaymentMethod string    `json:"paymentMethod" binding:"required,oneof=online wallet offline"`
	CouponCode    *string   `json:"couponCode,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

func (r CreateAppointmentRequest) ToInput() commands.CreateAppointmentInput {
	return commands.CreateAppointmentInput{
		ShopID:        r.ShopID,
		ServiceID:     r.ServiceID,
		Day:           r.Day,
		StartTime:     r.StartTime,
		PaymentMethod: r.PaymentMethod,
		CouponCode:    trimmedPtr(r.CouponCode),
		Notes:         trimmedPtr(r.Notes),
	}
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TimeSlotsQuery struct {
	ShopID    uuid.UUID `form:"shopId" binding:"required"`
	ServiceID uuid.UUID `form:"serviceId" binding:"required"`
	Day       string    `form:"date" binding:"required,dateonly"`
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
