package llm

import (
	"context"
	"errors"
	"sync"
)

const mockDefaultText = `1. Define the central concept of this unit.
2. Explain one application of the topics listed in this unit.`

// MockResponse is a canned response for the Mock generator.
type MockResponse struct {
	Text string
	Err  error
}

// Mock is a deterministic Generator for tests and offline runs.
// It returns canned responses in FIFO order and records every prompt.
type Mock struct {
	// Default is returned once the queue is empty. When it is also empty
	// the call fails.
	Default string

	mu        sync.Mutex
	responses []MockResponse
	Prompts   []string
}

// NewMock creates a Mock with the given canned responses.
func NewMock(responses ...MockResponse) *Mock {
	return &Mock{responses: responses}
}

func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.responses) == 0 {
		if m.Default != "" {
			return m.Default, nil
		}
		return "", &ErrGeneration{Backend: BackendMock, Err: errors.New("no canned response left")}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

// ModelID returns "mock".
func (m *Mock) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *Mock) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
