package llm

import (
	"context"
	"encoding/json"

	"scope-chat/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Raw      json.RawMessage
	Err      error

	Calls        int
	LastMessages []domain.ChatMessage
	LastTemp     float64
}

func (m *MockClient) Complete(ctx context.Context, messages []domain.ChatMessage, temperature float64) (Completion, error) {
	m.Calls++
	m.LastMessages = append([]domain.ChatMessage(nil), messages...)
	m.LastTemp = temperature
	if m.Err != nil {
		return Completion{}, m.Err
	}
	raw := m.Raw
	if raw == nil {
		raw = json.RawMessage(`{}`)
	}
	return Completion{Content: m.Response, Raw: raw}, nil
}
