package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"scope-chat/internal/domain"
	"scope-chat/internal/llm"
)

// GreetingMessage es el saludo sintetico de una conversacion sin historial. No se persiste.
const GreetingMessage = "How can I assist you today?"

// Outcome clasifica como termino un turno de chat.
type Outcome string

const (
	OutcomeRefused   Outcome = "refused"
	OutcomeMock      Outcome = "mock"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeModel     Outcome = "model"
)

type ChatInput struct {
	Identity    IdentityInput
	Messages    []domain.ChatMessage
	Temperature float64
	SeenMockIDs []int64
}

type ChatResult struct {
	Outcome Outcome
	MockID  *int64
	Content string
	// Raw es el payload del modelo; vacio en los demas caminos.
	Raw json.RawMessage
}

type LoadResult struct {
	User     domain.User
	Messages []domain.ChatMessage
}

type ChatService struct {
	logger   *zap.Logger
	identity *IdentityService
	history  *HistoryService
	gate     *ScopeGate
	selector SourceSelector
	mocks    MockResponder
	llm      llm.LLMClient
	seen     SeenStore
}

var ErrChatServiceNotConfigured = errors.New("chat service not configured")

// NewChatService arma el orquestador; seen puede ser nil si no se rastrean ids en el servidor.
func NewChatService(
	logger *zap.Logger,
	identity *IdentityService,
	history *HistoryService,
	gate *ScopeGate,
	selector SourceSelector,
	mocks MockResponder,
	llmClient llm.LLMClient,
	seen SeenStore,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = NewScopeGate()
	}
	return &ChatService{
		logger:   logger,
		identity: identity,
		history:  history,
		gate:     gate,
		selector: selector,
		mocks:    mocks,
		llm:      llmClient,
		seen:     seen,
	}
}

// LoadChat resuelve la identidad (actualizando consentimiento) y devuelve el historial.
func (s *ChatService) LoadChat(ctx context.Context, in IdentityInput) (LoadResult, error) {
	if s == nil || s.identity == nil || s.history == nil {
		return LoadResult{}, ErrChatServiceNotConfigured
	}
	user, err := s.identity.Resolve(ctx, in)
	if err != nil {
		return LoadResult{}, err
	}
	msgs, err := s.history.History(ctx, user.ID)
	if err != nil {
		return LoadResult{}, err
	}
	if len(msgs) == 0 {
		msgs = []domain.ChatMessage{{Role: domain.RoleAssistant, Content: GreetingMessage}}
	}
	return LoadResult{User: user, Messages: msgs}, nil
}

// Chat procesa un turno: gate de apertura, persistencia y respuesta mock o del modelo.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	if s == nil || s.identity == nil || s.history == nil {
		return ChatResult{}, ErrChatServiceNotConfigured
	}
	for _, m := range in.Messages {
		if !m.Role.Valid() {
			return ChatResult{}, fmt.Errorf("%w: role %q", ErrInvalidMessage, m.Role)
		}
	}

	// En /api/chat el consentimiento no se toca.
	identity := in.Identity
	identity.Consent = ""
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return ChatResult{}, err
	}

	history, err := s.history.History(ctx, user.ID)
	if err != nil {
		return ChatResult{}, err
	}

	if len(history) == 0 && !s.openingInScope(in.Messages) {
		s.logger.Info("opening message out of scope",
			zap.Int64("user_id", user.ID),
			zap.Int("group", user.Group),
		)
		return ChatResult{Outcome: OutcomeRefused, Content: RefusalMessage}, nil
	}

	chatContext := make([]domain.ChatMessage, 0, len(history)+len(in.Messages))
	chatContext = append(chatContext, history...)
	chatContext = append(chatContext, in.Messages...)

	if n := len(in.Messages); n > 0 {
		last := in.Messages[n-1]
		if err := s.history.Append(ctx, user.ID, last.Role, last.Content); err != nil {
			return ChatResult{}, err
		}
	}

	if s.selector.Select(in.Identity.Group) == SourceMock {
		return s.mockTurn(ctx, user, in.SeenMockIDs)
	}
	return s.modelTurn(ctx, user, chatContext, in.Temperature)
}

func (s *ChatService) openingInScope(msgs []domain.ChatMessage) bool {
	if len(msgs) == 0 {
		return false
	}
	return s.gate.InScope(msgs[len(msgs)-1].Content)
}

func (s *ChatService) mockTurn(ctx context.Context, user domain.User, clientSeen []int64) (ChatResult, error) {
	if s.mocks == nil {
		return ChatResult{}, ErrChatServiceNotConfigured
	}

	// El turno del usuario ya esta guardado: la respuesta se completa y persiste
	// aunque el cliente se desconecte durante la espera.
	ctx = context.WithoutCancel(ctx)

	seen := clientSeen
	if s.seen != nil {
		stored, err := s.seen.Seen(ctx, user.ID)
		if err != nil {
			s.logger.Warn("seen store read failed", zap.Int64("user_id", user.ID), zap.Error(err))
		} else {
			seen = append(append(make([]int64, 0, len(clientSeen)+len(stored)), clientSeen...), stored...)
		}
	}

	resp, err := s.mocks.Next(ctx, seen)
	if errors.Is(err, ErrMockExhausted) {
		if err := s.history.Append(ctx, user.ID, domain.RoleAssistant, ExhaustedMessage); err != nil {
			return ChatResult{}, err
		}
		s.logger.Info("mock responses exhausted", zap.Int64("user_id", user.ID), zap.Int("seen", len(seen)))
		return ChatResult{Outcome: OutcomeExhausted, Content: ExhaustedMessage}, nil
	}
	if err != nil {
		return ChatResult{}, err
	}

	if err := s.history.Append(ctx, user.ID, domain.RoleAssistant, resp.Message); err != nil {
		return ChatResult{}, err
	}
	if s.seen != nil {
		if err := s.seen.Add(ctx, user.ID, resp.ID); err != nil {
			s.logger.Warn("seen store write failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	id := resp.ID
	return ChatResult{Outcome: OutcomeMock, MockID: &id, Content: resp.Message}, nil
}

func (s *ChatService) modelTurn(ctx context.Context, user domain.User, chatContext []domain.ChatMessage, temperature float64) (ChatResult, error) {
	if s.llm == nil {
		return ChatResult{}, ErrChatServiceNotConfigured
	}
	completion, err := s.llm.Complete(ctx, chatContext, temperature)
	if err != nil {
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			return ChatResult{}, upErr
		}
		return ChatResult{}, fmt.Errorf("llm complete: %w", err)
	}
	if err := s.history.Append(ctx, user.ID, domain.RoleAssistant, completion.Content); err != nil {
		return ChatResult{}, err
	}
	return ChatResult{Outcome: OutcomeModel, Content: completion.Content, Raw: completion.Raw}, nil
}
