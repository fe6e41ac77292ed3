// Package validation содержит проверку входных данных HTTP API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bigjbird1/vowswap/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях об ошибках используются имена полей из JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
		return model.ContentType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("modaction", func(fl validator.FieldLevel) bool {
		return model.ModerationActionType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("discounttype", func(fl validator.FieldLevel) bool {
		return model.DiscountType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("reportstatus", func(fl validator.FieldLevel) bool {
		return model.ReportStatus(fl.Field().String()).Valid()
	})

	return v
}

// Struct проверяет структуру по тегам validate и возвращает ошибку с перечнем
// нарушенных правил в виде "поле: правило".
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ParseTime разбирает необязательную метку времени из параметра запроса.
// Допускаются RFC 3339 и дата в формате YYYY-MM-DD; пустая строка означает отсутствие значения.
func ParseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date %q", s)
}
