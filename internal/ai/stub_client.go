package ai

import (
	"context"
	"sync"
)

// StubClient заглушка, которая не делает реальных запросов.
// Запоминает полученные запросы, чтобы их можно было проверить.
type StubClient struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []Request
}

func NewStubClient() *StubClient { return &StubClient{Reply: "Request received (stub mode)."} }

func (c *StubClient) Complete(_ context.Context, req Request) (string, error) {
	c.mu.Lock()
	msgs := append([]Message(nil), req.Messages...)
	req.Messages = msgs
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Err != nil {
		return "", c.Err
	}
	return c.Reply, nil
}

// Requests возвращает копию всех полученных запросов.
func (c *StubClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

var _ Client = (*StubClient)(nil)
