package validator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const maxBodyBytes = 1 << 20

var (
	once     sync.Once
	validate *govalidator.Validate
	trans    ut.Translator
)

func engine() *govalidator.Validate {
	once.Do(func() {
		validate = govalidator.New()
		// Use JSON tag name for field names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, trans)
	})
	return validate
}

// Struct validates dst and returns nil or a translated field error map.
func Struct(dst interface{}) map[string]string {
	if err := engine().Struct(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// TranslateErrors maps a validation error to field name → message. Other
// errors come back under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind decodes the JSON request body into dst and validates it.
// Returns nil on success or a field error map on failure.
func Bind(r *http.Request, dst interface{}) map[string]string {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{"detail": "request body is empty"}
		}
		return TranslateErrors(err)
	}
	return Struct(dst)
}
