package ai

import "context"

// Роли сообщений, принимаемые Client.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message одно сообщение запроса: роль и текст.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request параметры одного запроса на генерацию. Модель задаётся клиентом.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int64
}

// Client интерфейс для взаимодействия с AI. Все реализации должны быть взаимозаменяемыми.
type Client interface {
	// Complete отправляет список сообщений и возвращает текст единственного ответа.
	Complete(ctx context.Context, req Request) (string, error)
}
