// Package validation holds the sign-up rule table. Messages are shown to users
// verbatim and are part of the form's contract.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stegportal/portal/internal/domain"
	"github.com/stegportal/portal/internal/logger"
)

const (
	MsgFullNameRequired = "Fullname is required"
	MsgFullNameMin      = "Fullname must be at least 6 characters"
	MsgFullNameMax      = "Fullname cannot exceed 50 characters"

	MsgEmailRequired = "steg_email must not be empty"
	MsgEmailInvalid  = "Invalid email format"

	MsgPasswordRequired = "Password must not be empty"
	MsgPasswordRules    = "Password must be 8-20 characters and contain at least 1 uppercase letter, 1 lowercase letter, 1 number, and 1 special character"

	MsgUnitKindRequired = "You must specify a unit (central or groupement)"
	MsgUnitKindInvalid  = "The unit must be either central or groupement"

	MsgUnitIdRequired = "The unit selection is required"
	MsgUnitIdInvalid  = "Please select a valid option"
)

const (
	tagPasswordClasses = "password_classes"
	tagUnitOption      = "unit_option"
)

// messages is keyed by field then by the validator tag that failed. Tags on
// domain.RegistrationRequest are evaluated in declaration order and stop at
// the first failure, so that order is the precedence of these messages.
var messages = map[domain.Field]map[string]string{
	domain.FieldFullName: {
		"required": MsgFullNameRequired,
		"min":      MsgFullNameMin,
		"max":      MsgFullNameMax,
	},
	domain.FieldEmail: {
		"required": MsgEmailRequired,
		"email":    MsgEmailInvalid,
	},
	domain.FieldPassword: {
		"required":         MsgPasswordRequired,
		"min":              MsgPasswordRules,
		"max":              MsgPasswordRules,
		tagPasswordClasses: MsgPasswordRules,
	},
	domain.FieldUnitKind: {
		"required": MsgUnitKindRequired,
		"oneof":    MsgUnitKindInvalid,
	},
	domain.FieldUnitId: {
		"required":    MsgUnitIdRequired,
		tagUnitOption: MsgUnitIdInvalid,
	},
}

var passwordClasses = []*regexp.Regexp{
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[^a-zA-Z0-9]`),
}

// Result maps a field's wire name to its single error message.
// A missing key means the field is valid.
type Result map[string]string

func (r Result) Valid() bool {
	return len(r) == 0
}

func (r Result) Get(f domain.Field) string {
	return r[string(f)]
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration of built-in style funcs only fails on empty tags.
	_ = v.RegisterValidation(tagPasswordClasses, passwordHasClasses)
	_ = v.RegisterValidation(tagUnitOption, unitIdInCatalog)
	return &Validator{validate: v}
}

// Validate checks every field of candidate independently and reports the
// first violated rule of each invalid field.
func (v *Validator) Validate(candidate domain.RegistrationRequest) Result {
	result := Result{}
	err := v.validate.Struct(candidate)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		logger.Log.Error("unexpected validator failure", "error", err)
		return result
	}

	for _, fe := range fieldErrors {
		field := domain.Field(fe.Field())
		if _, seen := result[string(field)]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			logger.Log.Warn("no message for validation rule", "field", field, "tag", fe.Tag())
			continue
		}
		result[string(field)] = msg
	}
	return result
}

func passwordHasClasses(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	for _, re := range passwordClasses {
		if !re.MatchString(password) {
			return false
		}
	}
	return true
}

// unitIdInCatalog checks the id against the catalog of the sibling UnitKind.
func unitIdInCatalog(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	kindField := parent.FieldByName("UnitKind")
	if !kindField.IsValid() {
		return false
	}
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return domain.HasOption(domain.UnitKind(kindField.String()), domain.UnitId(field.Int()))
	default:
		return false
	}
}
