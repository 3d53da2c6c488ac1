package validator

import (
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,64}$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	maxDuration time.Duration
}

func NewBookingValidator(log *logger.Logger, maxDuration time.Duration) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("identifier", validateIdentifier); err != nil {
		log.Fatal("Failed to register 'identifier' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate:    v,
		logger:      log,
		maxDuration: maxDuration,
	}
}

// validateIdentifier accepts the external ids used for customers and
// resources. Empty passes so it can be combined with omitempty/required.
func validateIdentifier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || identifierRegex.MatchString(value)
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	for field, value := range map[string]string{
		"CustomerID":     req.CustomerID,
		"ProfessionalID": req.ProfessionalID,
		"UserID":         req.UserID,
	} {
		if err := v.validate.Var(value, "identifier"); err != nil {
			return ValidationErrors{{Field: field, Message: field + " contains invalid characters"}}
		}
	}
	return nil
}

func (v *BookingValidator) ValidateChanges(changes *model.BookingChanges) error {
	if err := v.validate.Struct(changes); err != nil {
		return v.translate(err)
	}
	ids := map[string]*string{
		"CustomerID":     changes.CustomerID,
		"ProfessionalID": changes.ProfessionalID,
		"UserID":         changes.UserID,
	}
	for field, value := range ids {
		if value == nil {
			continue
		}
		if err := v.validate.Var(*value, "identifier"); err != nil {
			return ValidationErrors{{Field: field, Message: field + " contains invalid characters"}}
		}
	}
	if changes.StartTime != nil && changes.StartTime.IsZero() {
		return ValidationErrors{{Field: "StartTime", Message: "StartTime is required"}}
	}
	return nil
}

func (v *BookingValidator) ValidateStatus(change *model.BookingStatusChange) error {
	if err := v.validate.Struct(change); err != nil {
		return v.translate(err)
	}
	return nil
}

// Validate checks a fully derived booking right before it is written.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		return v.translate(err)
	}

	if !booking.EndTime.After(booking.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	if v.maxDuration > 0 && booking.EndTime.Sub(booking.StartTime) > v.maxDuration {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: fmt.Sprintf("booking cannot last longer than %s", v.maxDuration),
			},
		}
	}

	return nil
}

func (v *BookingValidator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translateValidationErrors(validationErrs)
	}
	return err
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
