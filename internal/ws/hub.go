package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Default configuration values.
const (
	defaultSendBuffer = 64
)

// Event — сообщение, которое Hub рассылает подписчикам.
//
// Type описывает вид события ("progress", "operation_complete",
// "operation_cancelled"), Payload — произвольные данные события.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Hub управляет websocket подписчиками и рассылкой событий.
//
// Все изменения множества клиентов и рассылка проходят через каналы
// в горутине Run — карта clients принадлежит только ей.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// done закрывается при выходе из Run — чтобы pump-горутины
	// клиентов не блокировались на unregister после остановки.
	done chan struct{}

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	stopped   bool
	stoppedMu sync.RWMutex
}

// Config — конфигурация Hub.
type Config struct {
	Logger *slog.Logger
}

// New создаёт новый Hub.
func New(cfg Config) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, defaultSendBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "ws_hub"),
	}
}

// Start запускает цикл обработки Hub.
func (h *Hub) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel

	h.wg.Add(1)
	go h.run(ctx)

	h.logger.Info("ws hub started")
}

// Stop останавливает Hub и закрывает все соединения.
func (h *Hub) Stop() {
	h.stoppedMu.Lock()
	if h.stopped {
		h.stoppedMu.Unlock()
		return
	}
	h.stopped = true
	h.stoppedMu.Unlock()

	if h.cancelFunc != nil {
		h.cancelFunc()
	}
	h.wg.Wait()

	h.logger.Info("ws hub stopped")
}

// Publish сериализует событие и рассылает его всем подписчикам.
// События, которые некому доставить, просто отбрасываются.
func (h *Hub) Publish(eventType string, payload map[string]any) {
	h.stoppedMu.RLock()
	stopped := h.stopped
	h.stoppedMu.RUnlock()
	if stopped {
		return
	}

	data, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("marshal ws event", "type", eventType, "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("ws broadcast buffer full, event dropped", "type", eventType)
	}
}

// PublishProgress — удобный шорткат для progress событий роутера.
func (h *Hub) PublishProgress(operationID string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["operation_id"] = operationID
	h.Publish("progress", payload)
}

func (h *Hub) run(ctx context.Context) {
	defer h.wg.Done()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("ws client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.logger.Debug("ws client disconnected", "clients", len(h.clients))
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Клиент не успевает читать — отключаем.
					delete(h.clients, c)
					c.close()
					h.logger.Warn("ws client too slow, dropped")
				}
			}
		}
	}
}
