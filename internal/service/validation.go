package service

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"

	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

const notBlankTag = "notblank"

var (
	validatorOnce sync.Once
	sharedValid   *validator.Validate
	translator    ut.Translator
)

// NewValidator returns the shared validator. It reports JSON field names and
// carries Spanish messages for every tag the request models use.
func NewValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		locale := es.New()
		translator, _ = ut.New(locale, locale).GetTranslator("es")
		_ = es_translations.RegisterDefaultTranslations(v, translator)

		_ = v.RegisterValidation(notBlankTag, notBlank)
		_ = v.RegisterTranslation(notBlankTag, translator,
			func(t ut.Translator) error {
				return t.Add(notBlankTag, "{0} no puede estar vacío", true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(notBlankTag, fe.Field())
				return msg
			},
		)
		sharedValid = v
	})
	return sharedValid
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// validationError converts the first validator failure into a field error.
func validationError(err error, fallback string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.ErrValidation.WithCause(err, fallback)
	}
	fe := fieldErrs[0]
	msg := fe.Field() + " no es válido"
	// Tags without a registered translation fall back to the raw validator text.
	if translator != nil {
		if translated := fe.Translate(translator); translated != fe.Error() {
			msg = translated
		}
	}
	fieldErr := appErrors.FieldError(fe.Field(), msg)
	fieldErr.Err = err
	return fieldErr
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
