package session

import (
	"EnglishTeacher/internal/service/history"
	"EnglishTeacher/internal/service/settings"
	"EnglishTeacher/internal/service/teacher"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session — состояние одного ученика: учитель с историей, записи для экрана и текущие настройки.
// Действия внутри сессии выполняются по одному: вызывающий держит Lock на время действия.
type Session struct {
	ID        string
	Teacher   *teacher.Teacher
	Exchanges *history.Exchanges

	// Mode и Level читаются и меняются только под Lock.
	Mode  settings.Mode
	Level settings.Level

	// Example — подсказка-пример, показанная ученику, под Lock.
	Example string

	mu       sync.Mutex
	lastSeen time.Time // под Manager.mu
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// TeacherFactory создаёт учителя для новой сессии.
type TeacherFactory func() *teacher.Teacher

// Options параметры менеджера сессий.
type Options struct {
	TTL           time.Duration // Простой, после которого сессия удаляется
	SweepInterval time.Duration // Периодичность очистки
	DefaultMode   settings.Mode
	DefaultLevel  settings.Level
}

// Manager хранит сессии в памяти процесса. Потокобезопасен.
type Manager struct {
	newTeacher TeacherFactory
	opts       Options
	logger     *zap.SugaredLogger
	onChange   func(n int)
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(newTeacher TeacherFactory, opts Options, logger *zap.SugaredLogger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	if !opts.DefaultMode.Known() {
		opts.DefaultMode = settings.ModeConversation
	}
	if !opts.DefaultLevel.Known() {
		opts.DefaultLevel = settings.LevelIntermediate
	}
	return &Manager{
		newTeacher: newTeacher,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// OnChange задаёт колбэк, получающий число сессий после каждого изменения.
func (m *Manager) OnChange(fn func(n int)) *Manager {
	m.onChange = fn
	return m
}

// Get возвращает сессию по id. Если id пуст или неизвестен — создаёт новую с новым id.
// Второе значение — true, если сессия создана.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	now := m.now()
	if s, ok := m.sessions[id]; ok && id != "" {
		s.lastSeen = now
		m.mu.Unlock()
		return s, false
	}

	s := &Session{
		ID:        uuid.NewString(),
		Teacher:   m.newTeacher(),
		Exchanges: history.NewExchanges(),
		Mode:      m.opts.DefaultMode,
		Level:     m.opts.DefaultLevel,
		lastSeen:  now,
	}
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debugw("Создана сессия", "id", s.ID, "sessions", n)
	m.notify(n)
	return s, true
}

// Touch отмечает активность сессии без её создания. false — сессии уже нет.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = m.now()
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	l := len(m.sessions)
	m.mu.Unlock()
	return l
}

// Sweep удаляет сессии, простаивающие дольше TTL относительно now. Возвращает число удалённых.
func (m *Manager) Sweep(now time.Time) int {
	deadline := now.Add(-m.opts.TTL)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(deadline) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Infow("Очистка сессий выполнена", "removed", removed, "left", n)
		m.notify(n)
	}
	return removed
}

// Run периодически чистит простаивающие сессии до отмены контекста.
func (m *Manager) Run(ctx context.Context) error {
	t := time.NewTicker(m.opts.SweepInterval)
	defer t.Stop()
	m.logger.Infow("Очистка сессий запущена", "interval", m.opts.SweepInterval.String(), "ttl", m.opts.TTL.String())
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-t.C:
			m.Sweep(m.now())
		}
	}
}

func (m *Manager) notify(n int) {
	if m.onChange != nil {
		m.onChange(n)
	}
}
