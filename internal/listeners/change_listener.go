package listeners

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"gear-guard/internal/events"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/websocket"
)

// ChangeListener разносит события data.changed: в браузеры этого экземпляра
// и, если настроен Redis, остальным экземплярам сервиса.
type ChangeListener struct {
	wsService  services.WebSocketNotificationServiceInterface
	feed       repositories.ChangeFeedRepositoryInterface
	instanceID string
	logger     *zap.Logger
}

// NewChangeListener - feed может быть nil (один экземпляр, без Redis).
func NewChangeListener(
	wsService services.WebSocketNotificationServiceInterface,
	feed repositories.ChangeFeedRepositoryInterface,
	instanceID string,
	logger *zap.Logger,
) *ChangeListener {
	return &ChangeListener{
		wsService:  wsService,
		feed:       feed,
		instanceID: instanceID,
		logger:     logger,
	}
}

func (l *ChangeListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.DataChangedEventName, l.handleDataChanged)
	l.logger.Info("ChangeListener подписан на событие", zap.String("event", events.DataChangedEventName))
}

func (l *ChangeListener) handleDataChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DataChanged)
	if !ok {
		return nil
	}
	if err := l.broadcast(ctx, e); err != nil {
		return err
	}
	if l.feed == nil {
		return nil
	}

	e.Origin = l.instanceID
	message, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return l.feed.Publish(ctx, message)
}

func (l *ChangeListener) broadcast(ctx context.Context, e events.DataChanged) error {
	return l.wsService.Broadcast(ctx, websocket.MessageTypeDataChanged, websocket.DataChangedPayload{
		Collection: e.Collection,
		DocumentID: e.DocumentID,
		Action:     e.Action,
	})
}

// Run принимает изменения от других экземпляров и пересылает их своим браузерам.
// Свои же сообщения (origin == instanceID) пропускаются. Блокируется до отмены ctx.
func (l *ChangeListener) Run(ctx context.Context) error {
	if l.feed == nil {
		return nil
	}
	messages, err := l.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("Подписка на общий канал изменений активна", zap.String("instance", l.instanceID))

	for message := range messages {
		var e events.DataChanged
		if err := json.Unmarshal(message, &e); err != nil {
			l.logger.Warn("Некорректное сообщение в канале изменений", zap.Error(err))
			continue
		}
		if e.Origin == l.instanceID {
			continue
		}
		if err := l.broadcast(ctx, e); err != nil {
			l.logger.Warn("Не удалось разослать изменение", zap.Error(err))
		}
	}
	return nil
}
