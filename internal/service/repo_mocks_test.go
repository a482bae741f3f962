package service

import (
	"context"
	"sync"

	"scope-chat/internal/domain"
	"scope-chat/internal/repository"
)

type memUserRepo struct {
	mu        sync.Mutex
	users     []domain.User
	nextID    int64
	getErr    error
	createErr error

	// raceUser simula otro insert entre GetByGroupMember y Create.
	raceUser       *domain.User
	consentUpdates int
}

func (m *memUserRepo) GetByGroupMember(_ context.Context, group int, member string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.User{}, m.getErr
	}
	for _, u := range m.users {
		if u.Group == group && u.Member == member {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.raceUser != nil {
		m.nextID++
		winner := *m.raceUser
		winner.ID = m.nextID
		m.users = append(m.users, winner)
		m.raceUser = nil
	}
	for _, u := range m.users {
		if u.Group == user.Group && u.Member == user.Member {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users = append(m.users, *user)
	return nil
}

func (m *memUserRepo) UpdateConsent(_ context.Context, id int64, consent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Consent = consent
			m.consentUpdates++
			return nil
		}
	}
	return repository.ErrNotFound
}

type memMessageRepo struct {
	mu        sync.Mutex
	messages  []domain.Message
	createErr error
	listErr   error
}

func (m *memMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	message.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, message)
	return nil
}

func (m *memMessageRepo) ListByUserID(_ context.Context, userID int64) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Message, 0)
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memMockRepo struct {
	messages  []string
	getErr    error
	insertErr error
	inserted  int
	lookups   []int64
}

func (m *memMockRepo) GetByID(_ context.Context, id int64) (domain.MockResponse, error) {
	m.lookups = append(m.lookups, id)
	if m.getErr != nil {
		return domain.MockResponse{}, m.getErr
	}
	if id < 1 || int(id) > len(m.messages) {
		return domain.MockResponse{}, repository.ErrNotFound
	}
	return domain.MockResponse{ID: id, Message: m.messages[id-1]}, nil
}

func (m *memMockRepo) Count(_ context.Context) (int, error) {
	return len(m.messages), nil
}

func (m *memMockRepo) InsertAll(_ context.Context, messages []string) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.messages = append(m.messages, messages...)
	m.inserted++
	return nil
}
