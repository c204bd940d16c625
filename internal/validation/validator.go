// Package validation checks product request fields before they reach the catalog.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single failed rule.
type FieldError struct {
	Message string                 `json:"message"`
	Path    []string               `json:"path"`
	Type    string                 `json:"type"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error is returned when a product form fails validation. Only the first
// failing rule is reported.
type Error struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(detail FieldError) *Error {
	return &Error{Message: detail.Message, Details: []FieldError{detail}}
}

// Malformed wraps a request body that could not be decoded at all.
func Malformed(err error) *Error {
	return newError(FieldError{
		Message: fmt.Sprintf("request body could not be parsed: %v", err),
		Path:    []string{},
		Type:    "object.base",
	})
}

// numberPattern accepts decimal numbers with an optional exponent. Hex, NaN and Inf are not numbers here.
var numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// Validator holds the create and update rule sets for products.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. Field names in errors use the JSON keys.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("text", isText)
	_ = v.RegisterValidation("jsonnumber", isNumber)
	_ = v.RegisterValidation("truefalse", isTrueFalse)
	return &Validator{validate: v}
}

// isText fails when a JSON body sent a number, boolean, object or array.
func isText(fl validator.FieldLevel) bool {
	switch form := fl.Parent().Interface().(type) {
	case models.ProductForm:
		return form.IsText(fl.FieldName())
	case *models.ProductForm:
		return form.IsText(fl.FieldName())
	}
	return fl.Field().Kind() == reflect.String
}

func isNumber(fl validator.FieldLevel) bool {
	_, ok := parseNumber(fl.Field().String())
	return ok
}

func isTrueFalse(fl validator.FieldLevel) bool {
	_, ok := parseTrueFalse(fl.Field().String())
	return ok
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numberPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseTrueFalse(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// ValidateCreate applies the create rules, which require every field including productImage.
func (v *Validator) ValidateCreate(form models.ProductForm) (models.ProductFields, error) {
	if err := v.validate.Struct(form); err != nil {
		return models.ProductFields{}, translate(err)
	}
	return toFields(form)
}

// ValidateUpdate applies the update rules. productImage may be absent.
func (v *Validator) ValidateUpdate(form models.ProductForm) (models.ProductFields, error) {
	if err := v.validate.StructExcept(form, "ProductImage"); err != nil {
		return models.ProductFields{}, translate(err)
	}
	return toFields(form)
}

func toFields(form models.ProductForm) (models.ProductFields, error) {
	price, ok := parseNumber(string(form.Price))
	if !ok {
		return models.ProductFields{}, newError(baseError("price", "number", string(form.Price)))
	}
	featured, ok := parseTrueFalse(string(form.Featured))
	if !ok {
		return models.ProductFields{}, newError(baseError("featured", "boolean", string(form.Featured)))
	}
	return models.ProductFields{
		Name:         string(form.Name),
		Details:      string(form.Details),
		Price:        price,
		Featured:     featured,
		ProductImage: string(form.ProductImage),
	}, nil
}

func translate(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	return newError(describe(validationErrors[0]))
}

func describe(fe validator.FieldError) FieldError {
	field := fe.Field()
	value := fmt.Sprint(fe.Value())
	context := map[string]interface{}{
		"label": field,
		"key":   field,
	}

	switch fe.Tag() {
	case "required":
		return FieldError{
			Message: fmt.Sprintf("%q is required", field),
			Path:    []string{field},
			Type:    "any.required",
			Context: context,
		}
	case "min", "max":
		limit, _ := strconv.Atoi(fe.Param())
		context["limit"] = limit
		context["value"] = value
		detail := FieldError{Path: []string{field}, Context: context}
		if fe.Tag() == "min" {
			detail.Message = fmt.Sprintf("%q length must be at least %d characters long", field, limit)
			detail.Type = "string.min"
		} else {
			detail.Message = fmt.Sprintf("%q length must be less than or equal to %d characters long", field, limit)
			detail.Type = "string.max"
		}
		return detail
	case "text":
		return baseError(field, "string", value)
	case "jsonnumber":
		return baseError(field, "number", value)
	case "truefalse":
		return baseError(field, "boolean", value)
	default:
		context["value"] = value
		return FieldError{
			Message: fmt.Sprintf("%q failed on the %q rule", field, fe.Tag()),
			Path:    []string{field},
			Type:    "any." + fe.Tag(),
			Context: context,
		}
	}
}

func baseError(field, kind, value string) FieldError {
	return FieldError{
		Message: fmt.Sprintf("%q must be a %s", field, kind),
		Path:    []string{field},
		Type:    kind + ".base",
		Context: map[string]interface{}{"label": field, "key": field, "value": value},
	}
}
