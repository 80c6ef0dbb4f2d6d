// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("month_range", validateMonthRange)
		_ = v.RegisterValidation("period_selector", validatePeriodSelector)
		_ = v.RegisterValidation("user_role", validateUserRole)
	}
}

func validateMonthRange(fl validator.FieldLevel) bool {
	m := fl.Field().Int()
	return m >= 1 && m <= 12
}

// validatePeriodSelector accepts "all", "current", or an explicit "YYYY-MM" month.
func validatePeriodSelector(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "all" || s == "current" {
		return true
	}
	return periodRegex.MatchString(s)
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "USER", "ADMIN":
		return true
	}
	return false
}
