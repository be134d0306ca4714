package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/services"
	"gear-guard/pkg/api"
)

type HealthController struct {
	healthService services.HealthServiceInterface
	logger        *zap.Logger
}

func NewHealthController(service services.HealthServiceInterface, logger *zap.Logger) *HealthController {
	return &HealthController{healthService: service, logger: logger}
}

func (c *HealthController) Health(ctx echo.Context) error {
	if err := c.healthService.Check(ctx.Request().Context()); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "ok", map[string]string{"store": "up"})
}
