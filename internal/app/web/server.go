package web

import (
	"EnglishTeacher/internal/app/metrics"
	"EnglishTeacher/internal/app/session"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

const (
	cookieName   = "teacher_session"
	maxFormBytes = 64 << 10
)

// Server — веб-интерфейс учителя: HTML-страница с формами, WebSocket и служебные ручки.
type Server struct {
	addr     string
	srv      *http.Server
	sessions *session.Manager
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
	running  atomic.Bool
}

// New создаёт сервер. m может быть nil — тогда метрики не пишутся;
// gatherer nil — /metrics отдаёт глобальный реестр.
func New(addr string, sessions *session.Manager, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) *Server {
	if addr == "" {
		addr = "127.0.0.1:8501"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		addr:     addr,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /settings", s.handleSettings)
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("POST /example", s.handleExample)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("POST /summary", s.handleSummary)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// WriteTimeout покрывает до трёх последовательных запросов к модели.
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler возвращает корневой обработчик (для тестов и встраивания).
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start запускает сервер в отдельной горутине и немедленно возвращается.
// При отмене контекста сервер останавливается.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("Веб-интерфейс запущен", "url", "http://"+s.addr+"/")
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Веб-сервер остановлен с ошибкой", "error", err)
		} else {
			s.logger.Infow("Веб-сервер остановлен")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

// Stop выполняет graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("web server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.addr }

// session находит сессию по cookie или создаёт новую и выставляет cookie.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(cookieName); err == nil {
		id = c.Value
	}
	sess, created := s.sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
