package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fatrate/internal/domain"
)

// InChatUpdate runs fn inside a single write transaction. Any error from fn
// rolls back every write made through the ChatTx. The connection's
// _txlock=immediate option makes BEGIN take the write lock, so two chats
// updating at once queue rather than abort.
func (d *DB) InChatUpdate(ctx context.Context, chatID int64, fn func(tx domain.ChatTx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat update: %w", err)
	}
	if err := fn(&chatTx{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chat update: %w", err)
	}
	return nil
}

// chatTx reads and writes through the open transaction, so it observes its
// own pending writes.
type chatTx struct {
	q *sql.Tx
}

func (t *chatTx) LatestHeight(ctx context.Context, userID, chatID int64) (float64, bool, error) {
	return latestHeight(ctx, t.q, userID, chatID)
}

func (t *chatTx) ChatRanking(ctx context.Context, chatID int64) ([]domain.RankEntry, error) {
	return chatRanking(ctx, t.q, chatID)
}

func (t *chatTx) GetProfile(ctx context.Context, userID, chatID int64) (*domain.Profile, error) {
	return getProfile(ctx, t.q, userID, chatID)
}

func (t *chatTx) ChatLatestSnapshot(ctx context.Context, chatID int64) ([]domain.LeaderboardRow, error) {
	return chatLatestSnapshot(ctx, t.q, chatID)
}

func (t *chatTx) UpsertMeasurement(ctx context.Context, m domain.Measurement) error {
	return upsertMeasurement(ctx, t.q, m)
}

func (t *chatTx) UpsertProfile(ctx context.Context, p domain.Profile) error {
	return upsertProfile(ctx, t.q, p)
}
