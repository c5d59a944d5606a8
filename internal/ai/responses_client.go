package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// NewOpenAIClient создаёт клиента OpenAI с фиксированным таймаутом и без автоматических повторов.
// Пустой baseURL — адрес по умолчанию из SDK.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

// ResponsesClient реализует Client поверх Responses API. Запросы stateless:
// вся история передаётся вызывающим в Request.Messages.
type ResponsesClient struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewResponsesClient(client *openai.Client, model string, logger *zap.SugaredLogger) *ResponsesClient {
	return &ResponsesClient{client: client, model: model, logger: logger}
}

func (c *ResponsesClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}
	if len(req.Messages) == 0 {
		return "", errors.New("at least one message must be provided")
	}

	inputItems := make(responses.ResponseInputParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		role, err := easyRole(m.Role)
		if err != nil {
			return "", err
		}
		inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(m.Content, role))
	}

	params := responses.ResponseNewParams{
		Model:       c.model,
		Input:       responses.ResponseNewParamsInputUnion{OfInputItemList: inputItems},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxTokens)
	}

	start := time.Now()
	c.logger.Debugw("Запрос в OpenAI...", "model", c.model, "messages", len(inputItems))
	resp, err := c.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа OpenAI", "duration", dur.String(), "error", err)
		return "", err
	}
	c.logger.Infow("Ответ OpenAI получен", "duration", dur.String())

	// Пустой текст модели возвращается как есть.
	return strings.TrimSpace(resp.OutputText()), nil
}

func easyRole(role string) (responses.EasyInputMessageRole, error) {
	switch role {
	case RoleSystem:
		return responses.EasyInputMessageRoleSystem, nil
	case RoleUser:
		return responses.EasyInputMessageRoleUser, nil
	case RoleAssistant:
		return responses.EasyInputMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported message role %q", role)
	}
}

var _ Client = (*ResponsesClient)(nil)
