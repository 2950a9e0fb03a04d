package storage

import "context"

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (t *pgTx) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := t.tx.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetOrCreateUser is the SQLite counterpart of the PostgreSQL upsert.
func (t *sqliteTx) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	now := formatTime(timeNow())
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, created_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id
	`, login, displayName, now, now).Scan(&id)
	return id, err
}
