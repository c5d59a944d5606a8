package history

import "sync"

// Role — роль реплики в истории.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn — одна реплика диалога. После создания не изменяется.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History — потокобезопасная упорядоченная история реплик. Хранится целиком
// (нужна для итогов сессии), в запрос уходит только окно последних реплик.
type History struct {
	turns []Turn
	mu    sync.Mutex
}

func New() *History {
	return &History{}
}

// Append добавляет реплики в конец истории.
func (h *History) Append(turns ...Turn) {
	if len(turns) == 0 {
		return
	}
	h.mu.Lock()
	h.turns = append(h.turns, turns...)
	h.mu.Unlock()
}

// Window возвращает копию последних n реплик. n <= 0 — пустой срез.
func (h *History) Window(n int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		return []Turn{}
	}
	start := max(0, len(h.turns)-n)
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// All возвращает копию всей истории.
func (h *History) All() []Turn {
	h.mu.Lock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	h.mu.Unlock()
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	l := len(h.turns)
	h.mu.Unlock()
	return l
}

// Reset удаляет все реплики.
func (h *History) Reset() {
	h.mu.Lock()
	h.turns = nil
	h.mu.Unlock()
}
