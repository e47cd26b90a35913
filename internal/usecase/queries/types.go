package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read-side view types. The write side (commands) carries its own snapshot
// structs so neither side depends on the other's shapes.

type SlotView struct {
	StartTime string `json:"startTime"` // HH:MM, shop-local
	EndTime   string `json:"endTime"`
}

type HoursView struct {
	Weekday  time.Weekday
	OpenMin  int32
	CloseMin int32
}

type ShopView struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Timezone    string
	AutoConfirm bool
	Hours       []HoursView
}

type ServiceView struct {
	ID                   uuid.UUID
	ShopID               uuid.UUID
	Name                 string
	DurationMin          int32
	PriceCents           int64
	DiscountedPriceCents *int64
	Active               bool
}

// BusyInterval is an occupied [start, end) window taken from the claims
// table; only non-terminal appointments hold a claim.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

type PromotionView struct {
	ID             uuid.UUID
	ShopID         uuid.UUID
	Code           string
	AmountOffCents *int64
	PercentOff     *float64
	ServiceIDs     []uuid.UUID
	ValidFrom      *time.Time
	ValidTo        *time.Time
	UsageLimit     *int32
	UsedCount      int32
}

type PromotionQuote struct {
	DiscountCents int64
	PayableCents  int64
}

type AppointmentView struct {
	ID             uuid.UUID
	ShopID         uuid.UUID
	ShopName       string
	ShopOwnerID    uuid.UUID
	ServiceID      uuid.UUID
	ServiceName    string
	CustomerID     uuid.UUID
	Day            string // 2006-01-02, shop-local
	StartAt        time.Time
	EndAt          time.Time
	Status         string
	PaymentMethod  string
	PaymentStatus  string
	AmountCents    int64
	TransactionID  *string
	CouponCode     *string
	DiscountCents  int64
	Notes          *string
	ReviewEligible bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AppointmentListItem struct {
	ID          uuid.UUID
	ShopName    string
	ServiceName string
	Day         string
	StartAt     time.Time
	EndAt       time.Time
	Status      string
	AmountCents int64
	CreatedAt   time.Time
}
