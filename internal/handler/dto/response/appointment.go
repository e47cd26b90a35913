package response

import (
	"log/slog"
	"time"

	"shopbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	ShopID         uuid.UUID `json:"shopId"`
	ShopName       string    `json:"shopName"`
	ServiceID      uuid.UUID `json:"serviceId"`
	ServiceName    string    `json:"serviceName"`
	CustomerID     uuid.UUID `json:"customerId"`
	Day            string    `json:"date"`
	StartAt        time.Time `json:"startAt"`
	EndAt          time.Time `json:"endAt"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"paymentMethod"`
	PaymentStatus  string    `json:"paymentStatus"`
	AmountCents    int64     `json:"amountCents"`
	CouponCode     *string   `json:"couponCode,omitempty"`
	DiscountCents  int64     `json:"discountCents"`
	Notes          *string   `json:"notes,omitempty"`
	ReviewEligible bool      `json:"reviewEligible"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type AppointmentListResponse struct {
	ID          uuid.UUID `json:"id"`
	ShopName    string    `json:"shopName"`
	ServiceName string    `json:"serviceName"`
	Day         string    `json:"date"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amountCents"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TimeSlotsResponse struct {
	Slots []SlotResponse `json:"availableSlots"`
}

type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func FromAppointmentView(view *queries.AppointmentView) *AppointmentResponse {
	var resp AppointmentResponse
	if err := copier.Copy(&resp, view); err != nil {
		slog.Error("failed to map appointment view", "error", err)
	}
	return &resp
}

func FromAppointmentListItem(item *queries.AppointmentListItem) *AppointmentListResponse {
	var resp AppointmentListResponse
	if err := copier.Copy(&resp, item); err != nil {
		slog.Error("failed to map appointment list item", "error", err)
	}
	return &resp
}

func FromSlotViews(slots []queries.SlotView) *TimeSlotsResponse {
	resp := &TimeSlotsResponse{Slots: make([]SlotResponse, len(slots))}
	for i, s := range slots {
		resp.Slots[i] = SlotResponse{StartTime: s.StartTime, EndTime: s.EndTime}
	}
	return resp
}
