package appointment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeSlot = errors.New("start time must be before end time")
	ErrNegativeAmount  = errors.New("payable amount cannot be negative")
)

// TimeSlot is a half-open [start, end) interval.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time        { return ts.start }
func (ts TimeSlot) End() time.Time          { return ts.end }
func (ts TimeSlot) Duration() time.Duration { return ts.end.Sub(ts.start) }

func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.end) && other.start.Before(ts.end)
}

func (ts TimeSlot) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 { return m.cents }

// PromotionUse is the promotion sub-record of an appointment: either no
// promotion, or an applied code with the discount it produced. Modeled as a
// tagged value so callers branch on Applied() instead of probing optional
// fields.
type PromotionUse struct {
	applied       bool
	code          string
	discountCents int64
}

func NoPromotion() PromotionUse {
	return PromotionUse{}
}

func AppliedPromotion(code string, discountCents int64) PromotionUse {
	return PromotionUse{applied: true, code: code, discountCents: discountCents}
}

func (p PromotionUse) Applied() bool { return p.applied }
func (p PromotionUse) Code() string  { return p.code }

func (p PromotionUse) DiscountCents() int64 {
	if !p.applied {
		return 0
	}
	return p.discountCents
}

type Payment struct {
	method        PaymentMethod
	status        PaymentStatus
	amount        Money
	transactionID *string
}

func NewPayment(method PaymentMethod, amount Money) Payment {
	return Payment{method: method, status: PaymentUnpaid, amount: amount}
}

func ReconstructPayment(method PaymentMethod, status PaymentStatus, amount Money, transactionID *string) Payment {
	return Payment{method: method, status: status, amount: amount, transactionID: transactionID}
}

func (p Payment) Method() PaymentMethod  { return p.method }
func (p Payment) Status() PaymentStatus  { return p.status }
func (p Payment) Amount() Money          { return p.amount }
func (p Payment) TransactionID() *string { return p.transactionID }

func (p Payment) IsCaptured() bool { return p.status == PaymentCaptured }

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string { return n.value }
func (n Note) IsEmpty() bool  { return n.value == "" }
