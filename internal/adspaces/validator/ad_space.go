package validator

import (
	"errors"
	"fmt"
	"strings"

	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/go-playground/validator/v10"
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

type AdSpaceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAdSpaceValidator(log *logger.Logger) *AdSpaceValidator {
	v := validator.New()

	if err := v.RegisterValidation("ad_space_type", func(fl validator.FieldLevel) bool {
		return model.AdSpaceType(fl.Field().String()).Valid()
	}); err != nil {
		log.Fatal("Failed to register 'ad_space_type' validator", "error", err)
	}
	if err := v.RegisterValidation("ad_space_status", func(fl validator.FieldLevel) bool {
		return model.AdSpaceStatus(fl.Field().String()).Valid()
	}); err != nil {
		log.Fatal("Failed to register 'ad_space_status' validator", "error", err)
	}

	return &AdSpaceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AdSpaceValidator) Validate(adSpace *model.AdSpace) error {
	if err := v.validate.Struct(adSpace); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := translateValidationErrors(validationErrs)
			v.logger.Debug("Ad space failed validation", "name", adSpace.Name, "error", translated.Error())
			return translated
		}
		v.logger.Error("Ad space validator misconfigured", "error", err)
		return err
	}

	if adSpace.PricePerDay.IsNegative() {
		v.logger.Debug("Ad space failed validation", "name", adSpace.Name, "error", "negative price_per_day")
		return ValidationErrors{
			ValidationError{
				Field:   "PricePerDay",
				Message: "price_per_day cannot be negative",
			},
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "ad_space_type":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), joinTypes())
		case "ad_space_status":
			message = fmt.Sprintf("%s must be one of: AVAILABLE, BOOKED, UNAVAILABLE", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

func joinTypes() string {
	names := make([]string, 0, len(model.AdSpaceTypes))
	for _, t := range model.AdSpaceTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
