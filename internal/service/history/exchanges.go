package history

import (
	"sync"
	"time"
)

// Analysis — результат разбора ввода. Заполнено ровно одно из полей.
type Analysis struct {
	Feedback string `json:"feedback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Exchange — запись для отображения: ввод ученика, ответ, разбор и настройки.
type Exchange struct {
	UserInput string    `json:"user_input"`
	Response  string    `json:"response"`
	Analysis  Analysis  `json:"analysis"`
	Mode      string    `json:"mode"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchanges — потокобезопасный список записей, только добавление.
type Exchanges struct {
	items []Exchange
	mu    sync.Mutex
}

func NewExchanges() *Exchanges {
	return &Exchanges{}
}

func (e *Exchanges) Add(ex Exchange) {
	e.mu.Lock()
	e.items = append(e.items, ex)
	e.mu.Unlock()
}

// All возвращает копию всех записей в порядке добавления.
func (e *Exchanges) All() []Exchange {
	e.mu.Lock()
	out := make([]Exchange, len(e.items))
	copy(out, e.items)
	e.mu.Unlock()
	return out
}

// Recent возвращает копию последних n записей.
func (e *Exchanges) Recent(n int) []Exchange {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= 0 {
		return []Exchange{}
	}
	start := max(0, len(e.items)-n)
	out := make([]Exchange, len(e.items)-start)
	copy(out, e.items[start:])
	return out
}

// ModeCounts считает режимы среди последних n записей.
func (e *Exchanges) ModeCounts(n int) map[string]int {
	counts := make(map[string]int)
	for _, ex := range e.Recent(n) {
		counts[ex.Mode]++
	}
	return counts
}

func (e *Exchanges) Len() int {
	e.mu.Lock()
	l := len(e.items)
	e.mu.Unlock()
	return l
}

func (e *Exchanges) Reset() {
	e.mu.Lock()
	e.items = nil
	e.mu.Unlock()
}
