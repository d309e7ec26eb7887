package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - это обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

// Bus - шина событий внутри процесса.
type Bus struct {
	listeners      map[string][]Listener
	syncListeners  map[string][]Listener
	mu             sync.RWMutex
	logger         *zap.Logger
	listenerTimout time.Duration
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners:      make(map[string][]Listener),
		syncListeners:  make(map[string][]Listener),
		logger:         logger,
		listenerTimout: time.Minute,
	}
}

// Subscribe подписывает слушателя, который вызывается в отдельной горутине.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// SubscribeSync подписывает слушателя, который отрабатывает до возврата из Publish.
// Инвалидация кэша должна завершиться раньше, чем клиент получит ответ.
func (b *Bus) SubscribeSync(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncListeners[eventName] = append(b.syncListeners[eventName], listener)
}

// Publish вызывает синхронных слушателей по очереди, затем запускает асинхронных.
// Возвращает объединённую ошибку синхронных слушателей.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	eventName := event.Name()
	syncListeners := append([]Listener(nil), b.syncListeners[eventName]...)
	asyncListeners := append([]Listener(nil), b.listeners[eventName]...)
	b.mu.RUnlock()

	var errs []error
	for _, l := range syncListeners {
		if err := l(ctx, event); err != nil {
			b.logger.Error("Ошибка в синхронном обработчике события",
				zap.String("event", eventName),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	for _, listener := range asyncListeners {
		go func(l Listener) {
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), b.listenerTimout)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}

	return errors.Join(errs...)
}
