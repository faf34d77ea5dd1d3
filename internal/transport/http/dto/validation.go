package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct maps the first validator failure onto a domain error.
// Presence checks stay with the account service, which owns the messages.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInternal(err)
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) *domain.Error {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	case "max":
		return domain.ErrInvalidField(field, "max length "+fe.Param())
	case "gte", "gt":
		return domain.ErrInvalidField(field, "must be >= "+fe.Param())
	default:
		return domain.ErrInvalidField(field, "invalid")
	}
}
