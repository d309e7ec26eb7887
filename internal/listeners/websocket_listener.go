package listeners

import (
	"context"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/websocket"
)

type Broadcaster interface {
	Broadcast(payload interface{}, messageType string) error
}

// WebSocketListener сообщает открытым представлениям, что местонахождение единиц
// изменилось и данные нужно перезапросить.
type WebSocketListener struct {
	hub    Broadcaster
	logger *zap.Logger
}

func NewWebSocketListener(hub Broadcaster, logger *zap.Logger) *WebSocketListener {
	return &WebSocketListener{hub: hub, logger: logger}
}

func (l *WebSocketListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(constants.EventEquipmentLocationChanged, l.handleLocationChanged)
	l.logger.Info("WebSocketListener подписан на событие '" + constants.EventEquipmentLocationChanged + "'")
}

func (l *WebSocketListener) handleLocationChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentLocationChangedEvent)
	if !ok {
		return nil
	}
	return l.hub.Broadcast(websocket.LocationChangedPayload{
		EquipmentIDs: e.EquipmentIDs,
		MovementID:   e.MovementID,
		Reason:       e.Reason,
		ActorID:      e.ActorID,
	}, websocket.MessageLocationChanged)
}
