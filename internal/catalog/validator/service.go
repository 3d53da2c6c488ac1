package validator

import (
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

type ServiceValidator struct {
	validate *validator.Validate
}

func NewServiceValidator(log *logger.Logger) *ServiceValidator {
	log.Info("Service validator initialized successfully")
	return &ServiceValidator{validate: validator.New()}
}

func (v *ServiceValidator) Validate(svc *model.Service) error {
	return v.translate(v.validate.Struct(svc))
}

func (v *ServiceValidator) ValidateUpdate(update *model.ServiceUpdate) error {
	return v.translate(v.validate.Struct(update))
}

func (v *ServiceValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}
