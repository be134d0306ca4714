package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "gear-guard/pkg/errors"
)

// bindAndValidate - разбор JSON и проверка тегов validate.
func bindAndValidate(ctx echo.Context, payload interface{}) error {
	if err := ctx.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	if err := ctx.Validate(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Ошибка валидации: "+err.Error(), err, nil)
	}
	return nil
}
