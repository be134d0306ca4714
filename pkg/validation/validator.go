// Package validation подключает go-playground/validator к echo: понимает null-типы
// и правила iso_date, not_blank, а в ошибках называет поля так, как их шлёт браузер.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EchoValidator реализует echo.Validator.
type EchoValidator struct {
	validate *validator.Validate
}

func (v *EchoValidator) Validate(payload interface{}) error {
	return v.validate.Struct(payload)
}

// New собирает валидатор. Паникует, если правило не зарегистрировалось: сервер с
// неполной валидацией запускать нельзя.
func New() *EchoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	registerNullTypes(v)
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}
	return &EchoValidator{validate: v}
}

// jsonFieldName - "equipmentId" вместо "EquipmentID" в сообщениях об ошибках.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
