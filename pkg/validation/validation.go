package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const notBlankTag = "notblank"

// messages maps validation tags to their display templates. {0} is the
// field label, {1} the tag parameter.
var messages = map[string]string{
	notBlankTag: "{0} required",
	"required":  "{0} required",
	"gt":        "{0} must be positive",
	"oneof":     "{0} must be one of {1}",
}

// Validator checks form payloads and renders the first failure as a short
// human-readable message.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New instantiates the validator with the custom tags and messages registered.
func New() *Validator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	// Labels read better than Go or JSON names in messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)

	for tag, text := range messages {
		registerTranslation(validate, translator, tag, text)
	}

	return &Validator{validate: validate, translator: translator}
}

// Engine exposes the underlying validator for struct-level registrations.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Check validates s and returns the message of the first failing field, or
// "" when s is valid. Non-field errors are returned as-is.
func (v *Validator) Check(s interface{}) (string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return "", nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "", err
	}
	return fieldErrs[0].Translate(v.translator), nil
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}
