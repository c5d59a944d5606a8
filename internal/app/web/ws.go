package web

import (
	"EnglishTeacher/internal/app/session"
	"EnglishTeacher/internal/service/history"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsReadLimit  = 64 << 10
	wsWriteWait  = 10 * time.Second
	wsIdleExpire = 30 * time.Minute

	sessionExpired = "Session expired. Please reload the page."
)

// wsRequest — команда клиента по WebSocket.
type wsRequest struct {
	Type  string `json:"type"` // send | clear | summary
	Input string `json:"input,omitempty"`
	Mode  string `json:"mode,omitempty"`
	Level string `json:"level,omitempty"`
}

// wsEvent — ответ сервера.
type wsEvent struct {
	Type       string            `json:"type"` // result | ignored | cleared | summary | error
	Exchange   *history.Exchange `json:"exchange,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Message    string            `json:"message,omitempty"`
	HistoryLen int               `json:"history_len"`
}

// handleWS обслуживает ту же сессию, что и HTML-страница, но в виде JSON-сообщений.
// Команды одного соединения выполняются строго по очереди.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var id string
	if c, err := r.Cookie(cookieName); err == nil {
		id = c.Value
	}
	sess, created := s.sessions.Get(id)

	var header http.Header
	if created {
		header = http.Header{}
		header.Add("Set-Cookie", (&http.Cookie{
			Name:     cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}).String())
	}

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Warnw("Не удалось открыть WebSocket", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	s.logger.Debugw("WebSocket подключён", "session", sess.ID)
	ctx := r.Context()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleExpire))
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.logger.Debugw("WebSocket закрыт", "session", sess.ID, "error", err)
			}
			return
		}

		ev := s.handleWSRequest(ctx, sess, req)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(ev); err != nil {
			s.logger.Warnw("Ошибка записи в WebSocket", "session", sess.ID, "error", err)
			return
		}
	}
}

func (s *Server) handleWSRequest(ctx context.Context, sess *session.Session, req wsRequest) wsEvent {
	if !s.sessions.Touch(sess.ID) {
		return wsEvent{Type: "error", Message: sessionExpired}
	}

	sess.Lock()
	defer sess.Unlock()

	applySettings(sess, req.Mode, req.Level)

	switch req.Type {
	case "send":
		ex, ok := s.send(ctx, sess, req.Input)
		if !ok {
			return wsEvent{Type: "ignored", HistoryLen: sess.Teacher.HistoryLen()}
		}
		return wsEvent{Type: "result", Exchange: &ex, HistoryLen: sess.Teacher.HistoryLen()}
	case "clear":
		clearSession(sess)
		return wsEvent{Type: "cleared", Message: conversationCleared}
	case "summary":
		if sess.Exchanges.Len() == 0 {
			return wsEvent{Type: "summary", Message: noHistoryToSummarize}
		}
		return wsEvent{Type: "summary", Summary: sess.Teacher.Summary(ctx), HistoryLen: sess.Teacher.HistoryLen()}
	default:
		return wsEvent{Type: "error", Message: "unknown request type: " + req.Type, HistoryLen: sess.Teacher.HistoryLen()}
	}
}
