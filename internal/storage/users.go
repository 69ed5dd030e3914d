package storage

import (
	"context"
	"fmt"
	"strings"
)

// LocalUserID is the seeded user that owns data when no identity is known.
const LocalUserID = 1

// GetOrCreateUser finds or creates a user by Tailscale login name and returns
// its ID. last_seen is refreshed and display_name updated when non-empty.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, fmt.Errorf("empty login")
	}
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}
