package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gear-guard/internal/controllers"
	"gear-guard/internal/services"
	"gear-guard/pkg/websocket"
)

func runSystemRouter(e *echo.Echo, health services.HealthServiceInterface, hub *websocket.Hub, allowedOrigins []string, logger *zap.Logger) {
	healthCtrl := controllers.NewHealthController(health, logger)
	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if hub != nil {
		wsCtrl := controllers.NewWebSocketController(hub, allowedOrigins, logger)
		e.GET("/ws", wsCtrl.ServeWs)
	}
}
