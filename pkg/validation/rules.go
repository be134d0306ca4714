package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"gear-guard/pkg/utils"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("iso_date", isISODate); err != nil {
		return err
	}
	if err := v.RegisterValidation("not_blank", isNotBlank); err != nil {
		return err
	}
	return nil
}

// isISODate - "2024-01-15" или "2024-01-15T09:00:00.000Z"
func isISODate(fl validator.FieldLevel) bool {
	return utils.IsISODate(fl.Field().String())
}

// isNotBlank - строка не пустая после обрезки пробелов
func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
