package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var (
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Calendar date in YYYY-MM-DD form
	validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != len("2006-01-02") {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	// Two-digit month, 01..12
	validate.RegisterValidation("month_mm", func(fl validator.FieldLevel) bool {
		return monthPattern.MatchString(fl.Field().String())
	})

	// Four-digit year, 0001..9999
	validate.RegisterValidation("yyyy", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return yearPattern.MatchString(value) && value != "0000"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "len":
			errors[field] = "Value must have length " + err.Param()
		case "numeric":
			errors[field] = "Value must be numeric"
		case "isodate":
			errors[field] = "Invalid date. Must be YYYY-MM-DD"
		case "month_mm":
			errors[field] = "Invalid month. Must be MM (01-12)"
		case "yyyy":
			errors[field] = "Invalid year. Must be YYYY (0001-9999)"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
