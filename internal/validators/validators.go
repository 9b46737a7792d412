package validators

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

var registerOnce sync.Once

// Register adds the custom rules to gin's binding validator. Safe to call
// more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected binding validator engine")
			return
		}
		err = RegisterOn(v)
	})
	return err
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("clocklabel", validateClockLabel); err != nil {
		return err
	}
	return v.RegisterValidation("timezone", validateTimezone)
}

// clocklabel: "9:00 AM", "9AM", "14:30". Empty values are left to
// required/omitempty.
func validateClockLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || booking.IsClockLabel(s)
}

func validateTimezone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || timezone.IsValid(s)
}

// Message turns the first validation failure into a short sentence.
func Message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid request body."
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "email":
		return fe.Field() + " must be a valid email address."
	case "min", "gte", "gt":
		return fe.Field() + " is too small."
	case "max", "lte", "lt":
		return fe.Field() + " is too large."
	case "clocklabel":
		return fe.Field() + " must be a time like 9:00 AM."
	case "timezone":
		return fe.Field() + " must be an IANA timezone."
	case "datetime":
		return fe.Field() + " must be a date like 2006-01-02."
	}
	return fe.Field() + " is invalid."
}
