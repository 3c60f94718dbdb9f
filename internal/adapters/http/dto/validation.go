package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

// identifierPattern accepts license and organization ids: letters, digits
// and the separators used by UUIDs and slugs.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field errors are reported under
// the uri or json name the client sent.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(wireName)

		_ = validate.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

func wireName(fld reflect.StructField) string {
	for _, key := range []string{"uri", "json"} {
		if tag := fld.Tag.Get(key); tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				return ""
			}
			return name
		}
	}
	return fld.Name
}

func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// BindURIAndValidate binds gin path parameters into v and validates it.
func BindURIAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindUri(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	return Validate(v)
}

// ValidationErrors flattens validator failures into field -> message. Any
// other error yields an empty map.
func ValidationErrors(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
	}

	return fields
}

func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

var validationMessages = map[string]func(param string, kind reflect.Kind) string{
	"required":   func(string, reflect.Kind) string { return "this field is required" },
	"notempty":   func(string, reflect.Kind) string { return "must not be empty" },
	"identifier": func(string, reflect.Kind) string { return "must be a valid identifier" },
	"email":      func(string, reflect.Kind) string { return "must be a valid email address" },
	"oneof":      func(p string, _ reflect.Kind) string { return "must be one of: " + p },
	"gte":        func(p string, _ reflect.Kind) string { return "must be greater than or equal to " + p },
	"lte":        func(p string, _ reflect.Kind) string { return "must be less than or equal to " + p },
	"min":        func(p string, k reflect.Kind) string { return "must be at least " + p + unit(k) },
	"max":        func(p string, k reflect.Kind) string { return "must be at most " + p + unit(k) },
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := validationMessages[fe.Tag()]; ok {
		return msg(fe.Param(), fe.Type().Kind())
	}
	return "failed validation: " + fe.Tag()
}

func unit(kind reflect.Kind) string {
	if kind == reflect.String {
		return " characters"
	}
	return ""
}
