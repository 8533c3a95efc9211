package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/goroutine"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
)

// Hub управляет всеми WebSocket клиентами и реализует event.Publisher.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context

	// publishTimeout ограничивает ожидание места в очереди доставки.
	publishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

var _ event.Publisher = (*Hub)(nil)

type message struct {
	userID  uuid.UUID
	payload []byte
}

// envelope задаёт формат сообщения клиенту: имя события в type, полезная нагрузка в data.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,

		publishTimeout: defaultPublishTimeout,
	}
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Publish ставит событие в очередь доставки. Если очередь заполнена, ждёт
// не дольше publishTimeout и отбрасывает событие. События одного вызывающего
// попадают в очередь в порядке вызовов.
// Пользователь без активных подключений событие просто не получит.
func (h *Hub) Publish(userID uuid.UUID, name string, data any) {
	raw, err := json.Marshal(envelope{Type: name, Data: data})
	if err != nil {
		logger.Log.WithError(err).WithField("event", name).Error("ws: не удалось сериализовать событие")
		return
	}

	msg := message{userID: userID, payload: raw}
	select {
	case h.broadcast <- msg:
		return
	default:
	}

	timer := time.NewTimer(h.publishTimeout)
	defer timer.Stop()

	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	case <-timer.C:
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "event": name}).Warn("ws: очередь доставки переполнена, событие отброшено")
	}
}

// Connections возвращает число активных подключений пользователя.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент отключается, чтобы не тормозить остальных.
			logger.Log.WithFields(logrus.Fields{"user_id": userID}).Warn("ws: буфер клиента переполнен, соединение закрыто")
			c := client
			goroutine.SafeGo(c.Close)
		}
	}
}
