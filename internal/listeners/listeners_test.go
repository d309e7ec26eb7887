package listeners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/websocket"
)

type recordingCache struct {
	calls [][]uint64
	err   error
}

func (c *recordingCache) Invalidate(ctx context.Context, ids []uint64) error {
	c.calls = append(c.calls, ids)
	return c.err
}

type broadcast struct {
	payload     interface{}
	messageType string
}

type chanBroadcaster chan broadcast

func (b chanBroadcaster) Broadcast(payload interface{}, messageType string) error {
	b <- broadcast{payload: payload, messageType: messageType}
	return nil
}

func TestCacheInvalidationListener_RunsBeforePublishReturns(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	cache := &recordingCache{}
	NewCacheInvalidationListener(cache, zap.NewNop()).Register(bus)

	require.NoError(t, bus.Publish(context.Background(), events.EquipmentLocationChangedEvent{EquipmentIDs: []uint64{1, 2}, Reason: events.ReasonDeparture}))
	require.NoError(t, bus.Publish(context.Background(), events.EquipmentRecordChangedEvent{EquipmentIDs: []uint64{3}, Reason: events.ReasonUpdated}))

	assert.Equal(t, [][]uint64{{1, 2}, {3}}, cache.calls)
}

func TestCacheInvalidationListener_ErrorSurfacesToPublisher(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	cache := &recordingCache{err: errors.New("redis недоступен")}
	NewCacheInvalidationListener(cache, zap.NewNop()).Register(bus)

	err := bus.Publish(context.Background(), events.EquipmentRecordChangedEvent{EquipmentIDs: []uint64{3}})
	assert.Error(t, err)
}

func TestWebSocketListener_BroadcastsLocationChanges(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	out := make(chanBroadcaster, 1)
	NewWebSocketListener(out, zap.NewNop()).Register(bus)

	movementID := uint64(11)
	require.NoError(t, bus.Publish(context.Background(), events.EquipmentLocationChangedEvent{
		EquipmentIDs: []uint64{4},
		MovementID:   &movementID,
		Reason:       events.ReasonArrival,
	}))

	select {
	case got := <-out:
		assert.Equal(t, websocket.MessageLocationChanged, got.messageType)
		payload, ok := got.payload.(websocket.LocationChangedPayload)
		require.True(t, ok)
		assert.Equal(t, []uint64{4}, payload.EquipmentIDs)
		assert.Equal(t, events.ReasonArrival, payload.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("сообщение не отправлено")
	}

	require.NoError(t, bus.Publish(context.Background(), events.EquipmentRecordChangedEvent{EquipmentIDs: []uint64{4}}))
	select {
	case <-out:
		t.Fatal("изменение карточки не должно рассылаться как смена местонахождения")
	case <-time.After(100 * time.Millisecond):
	}
}
