package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fatrate/internal/domain"
)

// GetProfile returns the profile for (user, chat), or nil when absent.
func (d *DB) GetProfile(ctx context.Context, userID, chatID int64) (*domain.Profile, error) {
	return getProfile(ctx, d.sql, userID, chatID)
}

func getProfile(ctx context.Context, q dbtx, userID, chatID int64) (*domain.Profile, error) {
	p := domain.Profile{UserID: userID, ChatID: chatID}
	err := q.QueryRowContext(ctx,
		`SELECT username, prefix, status FROM profiles
		 WHERE user_id = $1 AND chat_id = $2;`,
		userID, chatID,
	).Scan(&p.Username, &p.Prefix, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func upsertProfile(ctx context.Context, q dbtx, p domain.Profile) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO profiles (user_id, chat_id, username, prefix, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, chat_id) DO UPDATE SET
			username = excluded.username,
			prefix = excluded.prefix,
			status = excluded.status;`,
		p.UserID, p.ChatID, p.Username, p.Prefix, p.Status,
	)
	return err
}
