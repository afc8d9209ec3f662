// Package validation wraps go-playground/validator with a shared instance
// and converts its failures into validation AppErrors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the singleton validator instance
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("areatype", func(fl validator.FieldLevel) bool {
			return models.IsAreaType(fl.Field().String())
		})
	})
	return validate
}

// Struct validates s and returns a validation AppError listing every failing field
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.Validation(err.Error(), nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return types.Validation("validation failed", fields)
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return "this field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items or characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "areatype":
		return fmt.Sprintf("must be one of: %s", strings.Join(models.AreaTypes, " "))
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in the form %s", fe.Param())
	case "unique":
		return "must not contain duplicates"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
