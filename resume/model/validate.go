package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps json field paths to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// resumeDatePattern accepts YYYY, YYYY-MM and YYYY-MM-DD.
var resumeDatePattern = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?)?$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("resumedate", func(fl validator.FieldLevel) bool {
			value := strings.TrimSpace(fl.Field().String())
			return value == "Present" || resumeDatePattern.MatchString(value)
		})
		_ = v.RegisterValidation("fontsize", func(fl validator.FieldLevel) bool {
			return FontSize(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("spacing", func(fl validator.FieldLevel) bool {
			return Spacing(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("layout", func(fl validator.FieldLevel) bool {
			return Layout(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate checks field formats. Every field is optional; a resume may be saved empty.
func (c Content) Validate() error {
	return validateStruct(c)
}

// Validate checks that every enumerated tag is known.
func (c Customization) Validate() error {
	return validateStruct(c)
}

func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldPath(fe.Namespace())] = messageFor(fe)
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "resumedate":
		return "must be YYYY, YYYY-MM, YYYY-MM-DD or Present"
	case "url":
		return "must be a full URL"
	case "required":
		return "is required"
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	case "fontsize":
		return "must be one of small, medium, large"
	case "spacing":
		return "must be one of compact, normal, relaxed"
	case "layout":
		return "unknown layout"
	default:
		return "is invalid"
	}
}
