package handler

import (
	"errors"

	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs custom binding rules used by request
// DTOs. Must be called once before routes are served.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	// billingmonth validates a YYYY-MM billing period string
	return v.RegisterValidation("billingmonth", func(fl validator.FieldLevel) bool {
		_, err := billing.ParseMonth(fl.Field().String())
		return err == nil
	})
}
