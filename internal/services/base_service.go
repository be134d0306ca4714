package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gear-guard/internal/events"
	"gear-guard/pkg/eventbus"
)

// BaseService - общее для сервисов: логгер и оповещение об изменениях.
type BaseService struct {
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewBaseService(bus *eventbus.Bus, logger *zap.Logger) *BaseService {
	return &BaseService{bus: bus, logger: logger}
}

// notifyChanged публикует data.changed после успешной записи. bus может быть nil.
func (s *BaseService) notifyChanged(ctx context.Context, collection, id, action string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.DataChanged{
		Collection: collection,
		DocumentID: id,
		Action:     action,
		At:         time.Now().UTC(),
	})
}
