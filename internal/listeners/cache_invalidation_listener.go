package listeners

import (
	"context"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/eventbus"
)

// CacheInvalidator сбрасывает закэшированные представления оборудования.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ids []uint64) error
}

// CacheInvalidationListener - синхронный подписчик: к моменту ответа клиенту
// списки и карточки затронутых единиц уже сброшены.
type CacheInvalidationListener struct {
	cache  CacheInvalidator
	logger *zap.Logger
}

func NewCacheInvalidationListener(cache CacheInvalidator, logger *zap.Logger) *CacheInvalidationListener {
	return &CacheInvalidationListener{cache: cache, logger: logger}
}

func (l *CacheInvalidationListener) Register(bus *eventbus.Bus) {
	bus.SubscribeSync(constants.EventEquipmentLocationChanged, l.handle)
	bus.SubscribeSync(constants.EventEquipmentRecordChanged, l.handle)
	l.logger.Info("CacheInvalidationListener подписан на события оборудования")
}

func (l *CacheInvalidationListener) handle(ctx context.Context, event eventbus.Event) error {
	var ids []uint64
	switch e := event.(type) {
	case events.EquipmentLocationChangedEvent:
		ids = e.EquipmentIDs
	case events.EquipmentRecordChangedEvent:
		ids = e.EquipmentIDs
	default:
		return nil
	}
	if err := l.cache.Invalidate(ctx, ids); err != nil {
		return err
	}
	l.logger.Debug("Кеш оборудования сброшен", zap.String("event", event.Name()), zap.Uint64s("equipmentIDs", ids))
	return nil
}
