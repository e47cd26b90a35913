package promotion

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCode            = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrDiscountRuleConflict   = errors.New("discount must be either a fixed amount or a percentage")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

// Discount is a fixed amount off or a percentage off, never both.
type Discount struct {
	amountOffCents *int64
	percentOff     *float64
}

func NewFixedDiscount(amountOffCents int64) (Discount, error) {
	if amountOffCents < 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOffCents: &amountOffCents}, nil
}

func NewPercentageDiscount(percentOff float64) (Discount, error) {
	if percentOff < 0 || percentOff > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{percentOff: &percentOff}, nil
}

func NewDiscount(amountOffCents *int64, percentOff *float64) (Discount, error) {
	if (amountOffCents != nil) == (percentOff != nil) {
		return Discount{}, ErrDiscountRuleConflict
	}
	if amountOffCents != nil {
		return NewFixedDiscount(*amountOffCents)
	}
	return NewPercentageDiscount(*percentOff)
}

func (d Discount) IsPercentage() bool { return d.percentOff != nil }

func (d Discount) AmountOffCents() int64 {
	if d.amountOffCents != nil {
		return *d.amountOffCents
	}
	return 0
}

func (d Discount) PercentOff() float64 {
	if d.percentOff != nil {
		return *d.percentOff
	}
	return 0
}

// AmountFor computes the discount against a subtotal, rounded down to the
// smallest currency unit and floored at the subtotal so the payable amount
// never goes negative.
func (d Discount) AmountFor(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}

	var amount int64
	if d.IsPercentage() {
		amount = int64(float64(subtotalCents) * d.PercentOff() / 100.0)
	} else {
		amount = d.AmountOffCents()
	}

	if amount > subtotalCents {
		return subtotalCents
	}
	return amount
}
