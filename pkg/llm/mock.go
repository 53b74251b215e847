package llm

import (
	"context"
	"sync"
)

// MockClient is a Client for testing.
// It records calls and returns configured responses.
type MockClient struct {
	mu           sync.Mutex
	response     string
	responses    []string
	index        int
	err          error
	completeFunc func(ctx context.Context, req Request) (*Response, error)
	calls        []Request
}

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// WithResponses configures sequential responses, cycling when exhausted.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.index = 0
	return m
}

// WithError configures the mock to return err on every call.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc overrides Complete entirely.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.completeFunc
	err := m.err
	content := m.response
	if len(m.responses) > 0 {
		content = m.responses[m.index%len(m.responses)]
		m.index++
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, NewError("complete", ctx.Err(), false)
	}

	return &Response{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

// Calls returns a copy of all recorded requests.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent request, or a zero Request if none.
func (m *MockClient) LastCall() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}
	}
	return m.calls[len(m.calls)-1]
}

// CallCount returns the number of Complete invocations.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and response cycling state.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.index = 0
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)
