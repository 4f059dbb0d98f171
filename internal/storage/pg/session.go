package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stegportal/portal/internal/session"
)

// Set implements session.Store. Existing values are overwritten.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_values (scope_key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (scope_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing session value: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_values WHERE scope_key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading session value: %w", err)
	}
	return value, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE scope_key = $1`, key); err != nil {
		return fmt.Errorf("deleting session value: %w", err)
	}
	return nil
}

var _ session.Store = (*Storage)(nil)
