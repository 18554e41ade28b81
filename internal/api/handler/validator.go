package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldMessage is one entry of a validation failure body.
type FieldMessage struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ValidationError carries every field failure of one request body. The HTTP
// error handler renders it as {"errors": [...]} with status 400.
type ValidationError struct {
	Errors []FieldMessage
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fm := range e.Errors {
		msgs = append(msgs, fm.Msg)
	}
	return strings.Join(msgs, "; ")
}

// PasswordTooLongMsg is shown for passwords bcrypt cannot take.
const PasswordTooLongMsg = "Please enter a password with 72 bytes or fewer"

// fieldMessages overrides the generic wording for "<json field>.<tag>".
var fieldMessages = map[string]string{
	"name.required":     "Name is required.",
	"email.required":    "Please include a valid email.",
	"email.email":       "Please include a valid email.",
	"password.required": "Password is required",
	"password.min":      "Please enter a password with 6 or more characters",
	"password.maxbytes": PasswordTooLongMsg,
	"status.required":   "Status is required",
	"skills.required":   "Skills is required",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field errors are reported under their json names.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes; maxbytes bounds the encoded length.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return &echoValidator{v: v}
}

// bindError reports an unreadable request body in the same shape as a
// field validation failure.
func bindError() *ValidationError {
	return &ValidationError{Errors: []FieldMessage{{Msg: "Invalid request body", Location: "body"}}}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := &ValidationError{Errors: make([]FieldMessage, 0, len(ve))}
			for _, fe := range ve {
				out.Errors = append(out.Errors, FieldMessage{
					Msg:      fieldError(fe),
					Param:    fe.Field(),
					Location: "body",
				})
			}
			return out
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
