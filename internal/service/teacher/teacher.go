package teacher

import (
	"EnglishTeacher/internal/ai"
	"EnglishTeacher/internal/service/history"
	"EnglishTeacher/internal/service/settings"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultWindow — сколько последних реплик (3 пары) уходит вместе с новым вводом.
const DefaultWindow = 6

// NoHistoryMessage возвращается Summary при пустой истории.
const NoHistoryMessage = "No conversation history available."

// Параметры генерации для каждого вида запроса.
var (
	replyParams    = params{temperature: 0.7, maxTokens: 500}
	analysisParams = params{temperature: 0.3, maxTokens: 300}
	summaryParams  = params{temperature: 0.5, maxTokens: 200}
)

type params struct {
	temperature float64
	maxTokens   int64
}

// Виды запросов для Observer.
const (
	KindReply    = "reply"
	KindAnalysis = "analysis"
	KindSummary  = "summary"
)

// Observer получает сведения о каждом удалённом вызове (метрики).
type Observer interface {
	ObserveCompletion(kind string, dur time.Duration, err error)
}

// Result — ответ учителя на один ввод ученика.
type Result struct {
	Response string           `json:"response"`
	Analysis history.Analysis `json:"analysis"`
	Mode     settings.Mode    `json:"mode"`
	Level    settings.Level   `json:"level"`
}

// Teacher собирает промпт из настроек и истории, делает основной запрос и запрос разбора.
// Ошибки удалённых вызовов не выходят наружу: они превращаются в текст результата.
type Teacher struct {
	client   ai.Client
	history  *history.History
	window   int
	logger   *zap.SugaredLogger
	observer Observer
}

// New создаёт учителя с пустой историей. window вне (0, DefaultWindow] или нечётный — DefaultWindow.
func New(client ai.Client, window int, logger *zap.SugaredLogger) *Teacher {
	if window <= 0 || window > DefaultWindow || window%2 != 0 {
		window = DefaultWindow
	}
	return &Teacher{client: client, history: history.New(), window: window, logger: logger}
}

// WithObserver подключает наблюдателя удалённых вызовов.
func (t *Teacher) WithObserver(o Observer) *Teacher {
	t.observer = o
	return t
}

// Respond отвечает на ввод ученика в заданном режиме и уровне. Никогда не возвращает ошибку.
func (t *Teacher) Respond(ctx context.Context, input string, mode settings.Mode, level settings.Level) Result {
	messages := make([]ai.Message, 0, t.window+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: settings.SystemPrompt(mode, level)})
	for _, turn := range t.history.Window(t.window) {
		messages = append(messages, ai.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: input})

	reply, err := t.complete(ctx, KindReply, messages, replyParams)
	if err != nil {
		t.logger.Warnw("Не удалось получить ответ учителя", "mode", mode, "level", level, "error", err)
		return Result{
			Response: fmt.Sprintf("I apologize, but I encountered an error: %v. Please try again.", err),
			Analysis: history.Analysis{Error: err.Error()},
			Mode:     mode,
			Level:    level,
		}
	}

	analysis := t.analyze(ctx, input, mode)

	t.history.Append(
		history.Turn{Role: history.RoleUser, Content: input},
		history.Turn{Role: history.RoleAssistant, Content: reply},
	)

	return Result{Response: reply, Analysis: analysis, Mode: mode, Level: level}
}

// analyze делает независимый запрос разбора ввода. Ошибка попадает в Analysis.Error.
func (t *Teacher) analyze(ctx context.Context, input string, mode settings.Mode) history.Analysis {
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: settings.AnalysisPersona},
		{Role: ai.RoleUser, Content: settings.AnalysisPrompt(mode) + "\n\nText: " + input},
	}
	feedback, err := t.complete(ctx, KindAnalysis, messages, analysisParams)
	if err != nil {
		t.logger.Warnw("Не удалось выполнить разбор", "mode", mode, "error", err)
		return history.Analysis{Error: fmt.Sprintf("Analysis failed: %v", err)}
	}
	return history.Analysis{Feedback: feedback}
}

// Clear удаляет всю историю. Удалённых вызовов нет.
func (t *Teacher) Clear() {
	t.history.Reset()
}

// Summary возвращает краткие итоги сессии по всей истории.
// Пустая история — NoHistoryMessage без запроса; ошибка — текст ошибки.
func (t *Teacher) Summary(ctx context.Context) string {
	turns := t.history.All()
	if len(turns) == 0 {
		return NoHistoryMessage
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Sprintf("Could not generate summary: %v", err)
	}
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: settings.SummaryPersona},
		{Role: ai.RoleUser, Content: "Conversation history: " + string(data)},
	}
	summary, err := t.complete(ctx, KindSummary, messages, summaryParams)
	if err != nil {
		t.logger.Warnw("Не удалось получить итоги сессии", "turns", len(turns), "error", err)
		return fmt.Sprintf("Could not generate summary: %v", err)
	}
	return summary
}

// HistoryLen — количество сохранённых реплик.
func (t *Teacher) HistoryLen() int { return t.history.Len() }

// History возвращает копию всех сохранённых реплик.
func (t *Teacher) History() []history.Turn { return t.history.All() }

func (t *Teacher) complete(ctx context.Context, kind string, messages []ai.Message, p params) (string, error) {
	start := time.Now()
	out, err := t.client.Complete(ctx, ai.Request{
		Messages:    messages,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if t.observer != nil {
		t.observer.ObserveCompletion(kind, time.Since(start), err)
	}
	return out, err
}
