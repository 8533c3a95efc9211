package event

import "github.com/google/uuid"

// Имена событий, которые получает клиент по WebSocket.
const (
	TaskUpdated   = "task.updated"
	Notification  = "notification"
	ChatMessage   = "chat.message"
	WalletUpdated = "wallet.updated"
)

// Publisher доставляет событие всем подключениям пользователя.
// Вызывается только после фиксации транзакции.
type Publisher interface {
	Publish(userID uuid.UUID, event string, data any)
}

// Nop игнорирует события; используется, когда realtime не подключён.
type Nop struct{}

func (Nop) Publish(uuid.UUID, string, any) {}
