package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hhmmPattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

var weekdays = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

// Register installs the json tag name func and the custom "hhmm" and
// "weekday" rules on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsHHMM(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register hhmm validator: %w", err)
	}

	if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return weekdays[fl.Field().String()]
	}); err != nil {
		return fmt.Errorf("failed to register weekday validator: %w", err)
	}
	return nil
}

// New returns a standalone validator with the custom rules installed. It
// reads the same "binding" tags gin validates request bodies with.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterBinding installs the custom rules on gin's request binding
// validator.
func RegisterBinding() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unsupported binding validator engine")
	}
	return Register(v)
}

// IsHHMM reports whether s is a 24h "HH:MM" time of day.
func IsHHMM(s string) bool {
	return hhmmPattern.MatchString(s)
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Message turns a binding or validation error into the message shown to
// API clients. Missing required fields are listed together.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing, invalid []string
		for _, fe := range verrs {
			field := fieldPath(fe)
			if fe.Tag() == "required" {
				missing = append(missing, field)
				continue
			}
			invalid = append(invalid, ruleMessage(field, fe))
		}

		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "Please provide all required fields: "+strings.Join(missing, ", "))
		}
		parts = append(parts, invalid...)
		return strings.Join(parts, "; ")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "Invalid JSON body"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s has an invalid type", typeErr.Field)
	}
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		return "Unknown field " + strings.TrimPrefix(msg, "json: unknown field ")
	}
	return err.Error()
}

// fieldPath drops the root struct name, giving "contact.phone".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	case "weekday":
		return fmt.Sprintf("%s must be a day of the week", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
