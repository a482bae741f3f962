package service

import (
	"context"
	"errors"
	"fmt"

	"scope-chat/internal/domain"
	"scope-chat/internal/repository"
)

// HistoryService encapsula el log ordenado de mensajes de cada usuario.
type HistoryService struct {
	repo repository.MessageRepository
}

var (
	ErrHistoryServiceNotConfigured = errors.New("history service not configured")
	ErrInvalidMessage              = errors.New("message invalid input")
)

func NewHistoryService(repo repository.MessageRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// Append guarda el contenido tal cual, sin recortes ni limites.
func (s *HistoryService) Append(ctx context.Context, userID int64, role domain.Role, content string) error {
	if s == nil || s.repo == nil {
		return ErrHistoryServiceNotConfigured
	}
	if userID <= 0 || !role.Valid() {
		return ErrInvalidMessage
	}
	if err := s.repo.Create(ctx, domain.Message{
		UserID:  userID,
		Role:    role,
		Content: content,
	}); err != nil {
		return fmt.Errorf("save %s message: %w", role, err)
	}
	return nil
}

// History devuelve {role, content} en orden de insercion; vacio si no hay mensajes.
func (s *HistoryService) History(ctx context.Context, userID int64) ([]domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return nil, ErrHistoryServiceNotConfigured
	}
	msgs, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out, nil
}
