// Package validator checks request bodies and trade intents and converts
// failures into field-level apperr validation errors.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ecochain/token-catalog/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Engine returns the shared validator. It reads the same `binding` tags gin
// uses and reports fields by their JSON names.
func Engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Struct validates v against its binding tags
func Struct(v interface{}) error {
	if err := Engine().Struct(v); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate converts a binding or validator error into an apperr validation
// error with one message per field. Other errors, such as malformed JSON,
// become a single-message validation error.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validationf("Invalid request body: %v", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := lowerFirst(fe.Field())
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = message(fe)
	}
	return apperr.Validation(fields)
}

func message(fe validator.FieldError) string {
	label := upperFirst(fe.Field())
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
