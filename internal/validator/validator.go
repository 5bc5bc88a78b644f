package validator

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

var (
	trans     ut.Translator
	setupOnce sync.Once
)

// customTags are the domain tags available in binding:"..." and the message
// each one translates to.
var customTags = map[string]struct {
	fn  govalidator.Func
	msg string
}{
	"role":      {validRole, "{0} must be TEACHER or STUDENT"},
	"classcode": {validClassCode, "{0} must be 4 to 12 letters or digits"},
}

// Setup registers JSON field names, the domain tags and English translations
// on Gin's validator. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		for tag, ct := range customTags {
			_ = v.RegisterValidation(tag, ct.fn)
			_ = v.RegisterTranslation(tag, trans,
				func(ut ut.Translator) error { return ut.Add(tag, ct.msg, true) },
				func(ut ut.Translator, fe govalidator.FieldError) string {
					msg, _ := ut.T(tag, fe.Field())
					return msg
				},
			)
		}
	})
}

func validRole(fl govalidator.FieldLevel) bool {
	_, err := model.ParseRole(fl.Field().String())
	return err == nil
}

func validClassCode(fl govalidator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	if len(code) < 4 || len(code) > 12 {
		return false
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// TranslateErrors turns a binding error into field -> message. Body errors
// that are not validation failures are reported under "detail" without the
// decoder's internals.
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields[typeErr.Field] = "must be a " + typeErr.Type.String()
	case errors.Is(err, io.EOF):
		fields["detail"] = "request body is empty"
	default:
		fields["detail"] = "request body is not valid JSON"
	}
	return fields
}

// Bind binds and validates the JSON body into dst.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
