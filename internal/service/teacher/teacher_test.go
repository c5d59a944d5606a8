package teacher

import (
	"EnglishTeacher/internal/ai"
	"EnglishTeacher/internal/service/history"
	"EnglishTeacher/internal/service/settings"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient отвечает по-разному на основной запрос, разбор и итоги.
type scriptedClient struct {
	mu          sync.Mutex
	requests    []ai.Request
	replyErr    error
	analysisErr error
	summaryErr  error
	n           int
}

func (c *scriptedClient) Complete(_ context.Context, req ai.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	switch req.Messages[0].Content {
	case settings.AnalysisPersona:
		if c.analysisErr != nil {
			return "", c.analysisErr
		}
		return "feedback", nil
	case settings.SummaryPersona:
		if c.summaryErr != nil {
			return "", c.summaryErr
		}
		return "summary", nil
	default:
		if c.replyErr != nil {
			return "", c.replyErr
		}
		c.n++
		return fmt.Sprintf("reply %d", c.n), nil
	}
}

func (c *scriptedClient) replyRequests() []ai.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ai.Request
	for _, r := range c.requests {
		if strings.HasPrefix(r.Messages[0].Content, settings.TeacherPersona) {
			out = append(out, r)
		}
	}
	return out
}

func newTeacher(c ai.Client) *Teacher {
	return New(c, DefaultWindow, zap.NewNop().Sugar())
}

func TestRespondEchoesModeAndLevel(t *testing.T) {
	client := &scriptedClient{}
	tc := newTeacher(client)

	res := tc.Respond(context.Background(), "I goed home", settings.ModeGrammar, settings.LevelBeginner)

	assert.Equal(t, "reply 1", res.Response)
	assert.Equal(t, history.Analysis{Feedback: "feedback"}, res.Analysis)
	assert.Equal(t, settings.ModeGrammar, res.Mode)
	assert.Equal(t, settings.LevelBeginner, res.Level)
}

func TestRespondBuildsPrompt(t *testing.T) {
	client := &scriptedClient{}
	tc := newTeacher(client)

	tc.Respond(context.Background(), "hello", settings.ModeVocabulary, settings.LevelAdvanced)

	require.Len(t, client.requests, 2)
	reply := client.requests[0]
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, ai.Message{Role: ai.RoleSystem, Content: settings.SystemPrompt(settings.ModeVocabulary, settings.LevelAdvanced)}, reply.Messages[0])
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "hello"}, reply.Messages[1])
	assert.InDelta(t, 0.7, reply.Temperature, 1e-9)
	assert.Equal(t, int64(500), reply.MaxTokens)

	analysis := client.requests[1]
	assert.Equal(t, settings.AnalysisPersona, analysis.Messages[0].Content)
	assert.Equal(t, settings.AnalysisPrompt(settings.ModeVocabulary)+"\n\nText: hello", analysis.Messages[1].Content)
	assert.InDelta(t, 0.3, analysis.Temperature, 1e-9)
	assert.Equal(t, int64(300), analysis.MaxTokens)
}

func TestRespondUnknownModeUsesConversation(t *testing.T) {
	client := &scriptedClient{}
	tc := newTeacher(client)

	res := tc.Respond(context.Background(), "hi", "poetry", settings.LevelIntermediate)

	assert.Equal(t, settings.Mode("poetry"), res.Mode)
	assert.Equal(t, settings.SystemPrompt(settings.ModeConversation, settings.LevelIntermediate), client.requests[0].Messages[0].Content)
	assert.Contains(t, client.requests[1].Messages[1].Content, settings.AnalysisPrompt(settings.ModeConversation))
}

func TestThreeTurnsRetainSixEntriesInOrder(t *testing.T) {
	tc := newTeacher(&scriptedClient{})

	for _, in := range []string{"one", "two", "three"} {
		tc.Respond(context.Background(), in, settings.ModeConversation, settings.LevelIntermediate)
	}

	assert.Equal(t, []history.Turn{
		{Role: history.RoleUser, Content: "one"},
		{Role: history.RoleAssistant, Content: "reply 1"},
		{Role: history.RoleUser, Content: "two"},
		{Role: history.RoleAssistant, Content: "reply 2"},
		{Role: history.RoleUser, Content: "three"},
		{Role: history.RoleAssistant, Content: "reply 3"},
	}, tc.History())
}

func TestHistorySentNeverExceedsWindow(t *testing.T) {
	client := &scriptedClient{}
	tc := newTeacher(client)

	for i := range 10 {
		tc.Respond(context.Background(), fmt.Sprint("msg ", i), settings.ModeConversation, settings.LevelIntermediate)
	}
	assert.Equal(t, 20, tc.HistoryLen())

	replies := client.replyRequests()
	require.Len(t, replies, 10)
	for i, r := range replies {
		// system + окно истории + новый ввод
		historySent := len(r.Messages) - 2
		assert.LessOrEqual(t, historySent, DefaultWindow, "request %d", i)
		assert.Equal(t, min(2*i, DefaultWindow), historySent, "request %d", i)
	}

	last := replies[9].Messages
	assert.Equal(t, "msg 6", last[1].Content)
	assert.Equal(t, "msg 9", last[len(last)-1].Content)
}

func TestWindowIsCappedAtSixWholePairs(t *testing.T) {
	for _, window := range []int{20, 7, 3, -1} {
		client := &scriptedClient{}
		tc := New(client, window, zap.NewNop().Sugar())

		for i := range 10 {
			tc.Respond(context.Background(), fmt.Sprint("msg ", i), settings.ModeConversation, settings.LevelIntermediate)
		}

		last := client.replyRequests()[9].Messages
		assert.Equal(t, DefaultWindow, len(last)-2, "window %d", window)
		assert.Equal(t, ai.RoleUser, last[1].Role, "window %d", window)
	}

	client := &scriptedClient{}
	tc := New(client, 4, zap.NewNop().Sugar())
	for i := range 5 {
		tc.Respond(context.Background(), fmt.Sprint("msg ", i), settings.ModeConversation, settings.LevelIntermediate)
	}
	last := client.replyRequests()[4].Messages
	assert.Equal(t, 4, len(last)-2)
	assert.Equal(t, "msg 2", last[1].Content)
}

func TestPrimaryFailureIsRecovered(t *testing.T) {
	client := &scriptedClient{replyErr: errors.New("connection refused")}
	tc := newTeacher(client)

	var res Result
	require.NotPanics(t, func() {
		res = tc.Respond(context.Background(), "hello", settings.ModeWriting, settings.LevelAdvanced)
	})

	assert.Contains(t, res.Response, "I apologize")
	assert.Contains(t, res.Response, "connection refused")
	assert.Equal(t, "connection refused", res.Analysis.Error)
	assert.Empty(t, res.Analysis.Feedback)
	assert.Equal(t, settings.ModeWriting, res.Mode)
	assert.Equal(t, 0, tc.HistoryLen())
	assert.Len(t, client.requests, 1, "no analysis call after primary failure")
}

func TestAnalysisFailureKeepsReply(t *testing.T) {
	tc := newTeacher(&scriptedClient{analysisErr: errors.New("rate limited")})

	res := tc.Respond(context.Background(), "hello", settings.ModeGrammar, settings.LevelBeginner)

	assert.Equal(t, "reply 1", res.Response)
	assert.Equal(t, "Analysis failed: rate limited", res.Analysis.Error)
	assert.Equal(t, 2, tc.HistoryLen())
}

func TestClearAndSummary(t *testing.T) {
	client := &scriptedClient{}
	tc := newTeacher(client)

	tc.Respond(context.Background(), "hello", settings.ModeConversation, settings.LevelIntermediate)
	assert.Equal(t, "summary", tc.Summary(context.Background()))

	summaryReq := client.requests[len(client.requests)-1]
	assert.Equal(t, settings.SummaryPersona, summaryReq.Messages[0].Content)
	assert.True(t, strings.HasPrefix(summaryReq.Messages[1].Content, "Conversation history: ["))
	assert.Contains(t, summaryReq.Messages[1].Content, `"content": "hello"`)
	assert.Equal(t, int64(200), summaryReq.MaxTokens)

	tc.Clear()
	assert.Equal(t, 0, tc.HistoryLen())

	before := len(client.requests)
	assert.Equal(t, NoHistoryMessage, tc.Summary(context.Background()))
	assert.Len(t, client.requests, before, "summary of empty history must not call the API")
}

func TestSummaryFailure(t *testing.T) {
	tc := newTeacher(&scriptedClient{summaryErr: errors.New("timeout")})
	tc.Respond(context.Background(), "hello", settings.ModeConversation, settings.LevelIntermediate)

	assert.Equal(t, "Could not generate summary: timeout", tc.Summary(context.Background()))
}

type recordingObserver struct {
	kinds []string
	errs  int
}

func (o *recordingObserver) ObserveCompletion(kind string, _ time.Duration, err error) {
	o.kinds = append(o.kinds, kind)
	if err != nil {
		o.errs++
	}
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	tc := newTeacher(&scriptedClient{analysisErr: errors.New("x")}).WithObserver(obs)

	tc.Respond(context.Background(), "hello", settings.ModeConversation, settings.LevelIntermediate)
	tc.Summary(context.Background())

	assert.Equal(t, []string{KindReply, KindAnalysis, KindSummary}, obs.kinds)
	assert.Equal(t, 1, obs.errs)
}
