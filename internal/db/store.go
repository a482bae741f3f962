package db

import (
	"context"
	"fmt"

	"scope-chat/internal/config"
	"scope-chat/internal/repository"
)

// Store agrupa los repositorios sobre el motor elegido en la configuracion.
type Store struct {
	Driver        string
	Users         repository.UserRepository
	Messages      repository.MessageRepository
	MockResponses repository.MockResponseRepository

	ping  func(ctx context.Context) error
	close func()
}

// Open conecta, migra y construye los repositorios del driver configurado.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if err := MigratePostgres(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Store{
			Driver:        config.DriverPostgres,
			Users:         repository.NewPgUserRepository(pool),
			Messages:      repository.NewPgMessageRepository(pool),
			MockResponses: repository.NewPgMockResponseRepository(pool),
			ping:          pool.Ping,
			close:         pool.Close,
		}, nil
	case config.DriverSQLite:
		return OpenSQLiteStore(cfg.DatabaseFile)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.DatabaseDriver)
	}
}

// OpenSQLiteStore abre y migra un sqlite (":memory:" en tests).
func OpenSQLiteStore(path string) (*Store, error) {
	conn, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := MigrateSQLite(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{
		Driver:        config.DriverSQLite,
		Users:         repository.NewSQLiteUserRepository(conn),
		Messages:      repository.NewSQLiteMessageRepository(conn),
		MockResponses: repository.NewSQLiteMockResponseRepository(conn),
		ping:          conn.PingContext,
		close:         func() { conn.Close() },
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return fmt.Errorf("store not initialized")
	}
	return s.ping(ctx)
}

func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}
