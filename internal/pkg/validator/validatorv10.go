package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// NIST 800-63B bounds; 72 is bcrypt's input limit.
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	reOTPCode  = regexp.MustCompile(`^\d{6}$`)
	reNonDigit = regexp.MustCompile(`\D`)
)

const minPhoneDigits = 10

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps a field's JSON name to its translated message.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[fe.Field()] = fe.Translate(v.translator)
	}

	return errV10
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

type rule struct {
	tag     string
	message string
	fn      func(s string) bool
}

var customRules = []rule{
	{tag: "password", message: "{0} must be 8-72 characters", fn: rePassword.MatchString},
	{tag: "otpcode", message: "{0} must be exactly 6 digits", fn: reOTPCode.MatchString},
	{tag: "phone", message: "{0} must contain at least 10 digits", fn: func(s string) bool {
		return len(reNonDigit.ReplaceAllString(s, "")) >= minPhoneDigits
	}},
}

func registerCustom(validate *validator.Validate, enTrans ut.Translator) error {
	for _, r := range customRules {
		fn := r.fn
		err := validate.RegisterValidation(r.tag, func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && fn(s)
		})
		if err != nil {
			return err
		}

		if err := registerMessage(validate, enTrans, r.tag, r.message); err != nil {
			return err
		}
	}

	// alphaspace and its English message ship with v10; only the wording is replaced.
	return registerMessage(validate, enTrans, "alphaspace", "{0} can contain only letters and spaces")
}

func registerMessage(validate *validator.Validate, enTrans ut.Translator, tag, message string) error {
	return validate.RegisterTranslation(tag, enTrans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("error translating validation message", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return t
		},
	)
}
