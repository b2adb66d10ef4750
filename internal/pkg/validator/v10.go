package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	v10 "github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"steamvault/internal/pkg/strcase"
)

// 17-digit SteamID64, always starting with 7656.
var reSteamID = regexp.MustCompile(`^7656\d{13}$`)

// V10ValidationError carries per-field messages keyed by snake_case field
// name, produced from validator.v10 failures.
type V10ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *V10ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}

	return strings.Join(parts, "; ")
}

// V10Validator is a Validator backed by github.com/go-playground/validator.
type V10Validator struct {
	validate *v10.Validate
	trans    ut.Translator
}

// NewV10 builds a V10Validator with English translations and the custom
// steamid rule registered.
func NewV10() *V10Validator {
	validate := v10.New(v10.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strcase.ToLowerSnake(fld.Name)
		}

		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("steamid", validSteamID); err != nil {
		panic(err)
	}

	registerTranslation(validate, trans, "steamid", "{0} must be a 17-digit SteamID64")

	return &V10Validator{validate: validate, trans: trans}
}

// Validate implements the Validator interface.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var vErrs v10.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[fe.Field()] = fe.Translate(v.trans)
	}

	return &V10ValidationError{Fields: fields}
}

func validSteamID(fl v10.FieldLevel) bool {
	return reSteamID.MatchString(fl.Field().String())
}

func registerTranslation(validate *v10.Validate, trans ut.Translator, tag, msg string) {
	err := validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe v10.FieldError) string {
			t, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.(error).Error()
			}

			return t
		},
	)
	if err != nil {
		panic(err)
	}
}
