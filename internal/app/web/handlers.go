package web

import (
	"EnglishTeacher/internal/app/session"
	"EnglishTeacher/internal/service/history"
	"EnglishTeacher/internal/service/settings"
	"bytes"
	"context"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	recentActivityWindow = 5
	noHistoryToSummarize = "No conversation history to summarize."
	conversationCleared  = "Conversation cleared!"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type exchangeView struct {
	Number    int
	ModeLabel string
	history.Exchange
}

type modeCount struct {
	Label string
	Count int
}

type pageData struct {
	Modes       []option
	Levels      []option
	ModeLabel   string
	LevelLabel  string
	Description string
	Tips        []string
	Example     string
	Exchanges   []exchangeView
	Count       int
	Recent      []modeCount
	Summary     string
	Notice      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()
	s.render(w, sess, "", "")
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if !parseForm(w, r) {
		return
	}
	sess.Lock()
	applySettings(sess, r.PostForm.Get("mode"), r.PostForm.Get("level"))
	sess.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if !parseForm(w, r) {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	s.send(r.Context(), sess, r.PostForm.Get("input"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	sess.Example = sess.Mode.Example()
	sess.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	clearSession(sess)
	s.render(w, sess, "", conversationCleared)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Lock()
	defer sess.Unlock()

	if sess.Exchanges.Len() == 0 {
		s.render(w, sess, "", noHistoryToSummarize)
		return
	}
	s.render(w, sess, sess.Teacher.Summary(r.Context()), "")
}

// send обрабатывает ввод ученика в текущих настройках сессии. Пустой ввод игнорируется.
// Вызывающий держит Lock сессии.
func (s *Server) send(ctx context.Context, sess *session.Session, input string) (history.Exchange, bool) {
	if strings.TrimSpace(input) == "" {
		return history.Exchange{}, false
	}

	start := time.Now()
	res := sess.Teacher.Respond(ctx, input, sess.Mode, sess.Level)
	ex := history.Exchange{
		UserInput: input,
		Response:  res.Response,
		Analysis:  res.Analysis,
		Mode:      string(res.Mode),
		Level:     string(res.Level),
		Timestamp: time.Now(),
	}
	sess.Exchanges.Add(ex)
	sess.Example = ""
	if s.metrics != nil {
		s.metrics.IncExchanges()
	}
	s.logger.Infow("Обработано сообщение",
		"session", sess.ID,
		"mode", res.Mode,
		"level", res.Level,
		"analysis_error", res.Analysis.Error != "",
		"duration", time.Since(start).String(),
	)
	return ex, true
}

// applySettings меняет режим и уровень; значения не из множества игнорируются.
func applySettings(sess *session.Session, mode, level string) {
	if m, ok := settings.ParseMode(mode); ok {
		sess.Mode = m
	}
	if l, ok := settings.ParseLevel(level); ok {
		sess.Level = l
	}
}

func clearSession(sess *session.Session) {
	sess.Teacher.Clear()
	sess.Exchanges.Reset()
	sess.Example = ""
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) render(w http.ResponseWriter, sess *session.Session, summary, notice string) {
	data := pageData{
		ModeLabel:   sess.Mode.Label(),
		LevelLabel:  sess.Level.Label(),
		Description: sess.Mode.Description(),
		Tips:        sess.Mode.Tips(),
		Example:     sess.Example,
		Count:       sess.Exchanges.Len(),
		Summary:     summary,
		Notice:      notice,
	}
	for _, m := range settings.Modes() {
		data.Modes = append(data.Modes, option{Value: string(m), Label: m.Label(), Selected: m == sess.Mode})
	}
	for _, l := range settings.Levels() {
		data.Levels = append(data.Levels, option{Value: string(l), Label: l.Label(), Selected: l == sess.Level})
	}
	for i, ex := range sess.Exchanges.All() {
		data.Exchanges = append(data.Exchanges, exchangeView{
			Number:    i + 1,
			ModeLabel: settings.Mode(ex.Mode).Label(),
			Exchange:  ex,
		})
	}
	for mode, n := range sess.Exchanges.ModeCounts(recentActivityWindow) {
		data.Recent = append(data.Recent, modeCount{Label: settings.Mode(mode).Label(), Count: n})
	}
	sort.Slice(data.Recent, func(i, j int) bool { return data.Recent[i].Label < data.Recent[j].Label })

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		s.logger.Errorw("Ошибка рендера страницы", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
