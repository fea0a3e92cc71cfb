package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/portfolio-intake-backend/errs"
)

// MaxMessageLength is counted in characters, not bytes.
const MaxMessageLength = 1000

var shape = newShapeValidator()

var requiredMessages = map[string]string{
	"contactEmail": "Contact email is required",
	"email":        "Email is required",
}

func newShapeValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkShape enforces the struct tags (required fields, email format) and reports the first failure.
func checkShape(s any) error {
	err := shape.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewMalformedPayloadError("submission", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		msg, ok := requiredMessages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("%s is required", fe.Field())
		}
		return errs.NewValidationError(fe.Field(), msg)
	case "email":
		return errs.NewInvalidFieldError(fe.Field(), "value is not a valid email address")
	default:
		return errs.NewInvalidFieldError(fe.Field(), fe.Tag())
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate checks, in order: contact email, client type, and the name the client type requires.
func (p ProjectRequest) Validate() error {
	if err := checkShape(p); err != nil {
		return err
	}

	clientType := StringOr(p.ClientType, "")
	switch clientType {
	case "":
	case ClientTypeCompany:
		if StringOr(p.CompanyName, "") == "" {
			return errs.NewValidationError("companyName", "Company name is required for company client type")
		}
	case ClientTypeIndividual:
		if StringOr(p.ClientName, "") == "" {
			return errs.NewValidationError("clientName", "Client name is required for individual client type")
		}
	default:
		return errs.NewValidationError("clientType", "Invalid client type")
	}
	return nil
}

// Validate checks the client type first, then each required text field, then the contact email.
func (h HiringRequest) Validate() error {
	if h.ClientType != ClientTypeCompany {
		return errs.NewValidationError("clientType", "Client type must be 'company' for hiring requests")
	}

	required := []struct {
		field, value, message string
	}{
		{"companyName", h.CompanyName, "Company name is required"},
		{"positionTitle", h.PositionTitle, "Position title is required"},
		{"budget", h.Budget, "Budget is required"},
		{"timeline", h.Timeline, "Timeline is required"},
		{"requirements", h.Requirements, "Requirements are required"},
	}
	for _, r := range required {
		if blank(r.value) {
			return errs.NewValidationError(r.field, r.message)
		}
	}

	return checkShape(h)
}

func (c ContactMessage) Validate() error {
	if err := checkShape(c); err != nil {
		return err
	}
	if blank(c.Name) {
		return errs.NewValidationError("name", "Name is required")
	}
	if blank(c.Message) {
		return errs.NewValidationError("message", "Message is required")
	}
	if utf8.RuneCountInString(c.Message) > MaxMessageLength {
		return errs.NewValidationError("message", fmt.Sprintf("Message cannot exceed %d characters", MaxMessageLength))
	}
	return nil
}
