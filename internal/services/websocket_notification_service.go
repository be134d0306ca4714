package services

import (
	"context"

	"go.uber.org/zap"

	"gear-guard/pkg/websocket"
)

// Интерфейс, чтобы можно было легко подменять в тестах
type WebSocketNotificationServiceInterface interface {
	Broadcast(ctx context.Context, messageType string, payload interface{}) error
}

type WebSocketNotificationService struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketNotificationService(hub *websocket.Hub, logger *zap.Logger) WebSocketNotificationServiceInterface {
	return &WebSocketNotificationService{
		hub:    hub,
		logger: logger,
	}
}

func (s *WebSocketNotificationService) Broadcast(ctx context.Context, messageType string, payload interface{}) error {
	s.logger.Debug("Рассылка WebSocket-уведомления", zap.String("type", messageType))
	return s.hub.Broadcast(ctx, messageType, payload)
}
