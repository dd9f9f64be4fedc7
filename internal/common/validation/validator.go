// Package validation checks request structs with go-playground/validator
// struct tags and reports failures as validation AppErrors. Field values are
// never copied into the error since request fields may carry credentials.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"miniapp-auth/internal/common/errors"
)

// CodeInvalidRequest is the AppError code of every validation failure
const CodeInvalidRequest = "invalid_request"

// telegramUsername matches the public username rules: 5 to 32 characters of
// letters, digits and underscores
var telegramUsername = regexp.MustCompile(`^[A-Za-z0-9_]{5,32}$`)

var (
	instance *validator.Validate
	once     sync.Once
)

// get returns the shared validator, configured on first use
func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report JSON names so messages match the request body
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("telegram_username", func(fl validator.FieldLevel) bool {
			return telegramUsername.MatchString(fl.Field().String())
		})

		instance = v
	})
	return instance
}

// Struct validates s and returns nil or a validation AppError describing the
// first failing field
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return errors.ValidationError("request is invalid").WithCode(CodeInvalidRequest)
	}

	fe := fieldErrors[0]
	return errors.ValidationError(message(fe)).
		WithCode(CodeInvalidRequest).
		WithContext("field", fe.Field())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "telegram_username":
		return fmt.Sprintf("%s must be 5-32 letters, digits or underscores", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
