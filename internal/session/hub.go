// Package session рассылает изменения сессий (вход и выход) подписчикам внутри процесса.
package session

import (
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const defaultBuffer = 8

// Hub - единственный на процесс канал уведомлений о сессиях.
// Медленный подписчик не блокирует публикацию: событие для заполненного буфера отбрасывается.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]chan domain.SessionEvent
	nextID uint64
	buffer int
	closed bool
	logger logger.Logger
}

func NewHub(buffer int, logger logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Hub{
		subs:   make(map[string]map[uint64]chan domain.SessionEvent),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe подписывает на события пользователя userID.
// Возвращённую функцию отписки можно вызывать несколько раз.
func (h *Hub) Subscribe(userID string) (<-chan domain.SessionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.SessionEvent, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]chan domain.SessionEvent)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(userID, id) })
	}
}

func (h *Hub) unsubscribe(userID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[userID][id]
	if !ok {
		return
	}

	delete(h.subs[userID], id)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
	close(ch)
}

// Publish доставляет событие всем подписчикам пользователя.
func (h *Hub) Publish(event domain.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			h.logger.Warnf("session event %s for user %s dropped: subscriber is slow", event.Kind, event.UserID)
		}
	}
}

// Close закрывает все каналы подписчиков. Последующие Publish игнорируются.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for userID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, userID)
	}
}
