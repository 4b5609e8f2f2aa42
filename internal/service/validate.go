package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json names so messages match what the
// caller sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
		}
		return name
	})

	return v
}

// recordShape is the schema a stored record must satisfy after any write.
type recordShape struct {
	Name   string `validate:"required,min=2,max=120"`
	Email  string `validate:"required,email"`
	Role   string `validate:"required,oneof=ADMIN USER"`
	Status string `validate:"required,oneof=ACTIVE INACTIVE"`
}

func validateRecord(u user.User) error {
	return validateStruct(recordShape{
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Status: string(u.Status),
	})
}

// validateStruct runs the validate tags on in and folds the failures into a
// single *user.ValidationError. Inputs are validated here and nowhere else;
// the transports only decode.
func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", user.ErrInvalidInput, err)
	}

	out := &user.ValidationError{Fields: make([]user.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, user.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: ruleMessage(fe.Tag(), fe.Param()),
		})
	}

	return out
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "failed " + rule + " validation"
	}
}

func requireAuth(actor *auth.Claims) error {
	if actor == nil || actor.UserID() == "" {
		return user.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(actor *auth.Claims) error {
	if err := requireAuth(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return user.ErrForbidden
	}
	return nil
}

func normalizeSearch(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
