package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"scope-chat/internal/domain"
	"scope-chat/internal/repository"
)

// IdentityInput son los campos de identidad que envia el cliente.
type IdentityInput struct {
	Name      string
	StudentID string
	Group     int
	Member    string
	Consent   string
}

// IdentityService resuelve (grupo, miembro) a un usuario persistido.
type IdentityService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

var ErrIdentityServiceNotConfigured = errors.New("identity service not configured")

func NewIdentityService(logger *zap.Logger, users repository.UserRepository) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{logger: logger, users: users}
}

// Resolve busca el usuario por (grupo, miembro) y lo crea si no existe.
// Un consentimiento no vacio y distinto del guardado se actualiza en el lugar.
func (s *IdentityService) Resolve(ctx context.Context, in IdentityInput) (domain.User, error) {
	if s == nil || s.users == nil {
		return domain.User{}, ErrIdentityServiceNotConfigured
	}

	user, err := s.users.GetByGroupMember(ctx, in.Group, in.Member)
	if err == nil {
		return s.refreshConsent(ctx, user, in.Consent)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	user = domain.User{
		Name:      in.Name,
		StudentID: in.StudentID,
		Group:     in.Group,
		Member:    in.Member,
		Consent:   in.Consent,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, fmt.Errorf("create user: %w", err)
		}
		// Otra request creo el mismo (grupo, miembro) entre la lectura y el insert.
		s.logger.Info("user created concurrently, reloading",
			zap.Int("group", in.Group),
			zap.String("member", in.Member),
		)
		existing, err := s.users.GetByGroupMember(ctx, in.Group, in.Member)
		if err != nil {
			return domain.User{}, fmt.Errorf("reload user: %w", err)
		}
		return s.refreshConsent(ctx, existing, in.Consent)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.Int("group", user.Group),
		zap.String("member", user.Member),
	)
	return user, nil
}

func (s *IdentityService) refreshConsent(ctx context.Context, user domain.User, consent string) (domain.User, error) {
	if consent == "" || consent == user.Consent {
		return user, nil
	}
	if err := s.users.UpdateConsent(ctx, user.ID, consent); err != nil {
		return domain.User{}, fmt.Errorf("update consent: %w", err)
	}
	user.Consent = consent
	return user, nil
}
