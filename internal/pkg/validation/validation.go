package validation

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the booking-specific binding rules on
// gin's validator engine. Must run before the router starts serving.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("dateonly", validDateOnly); err != nil {
		return err
	}
	return v.RegisterValidation("hhmm", validHHMM)
}

// dateonly: calendar date in 2006-01-02 form
func validDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// hhmm: time of day in 24h 15:04 form
func validHHMM(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
