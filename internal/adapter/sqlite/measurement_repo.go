package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"fatrate/internal/domain"
)

// Each user ranks by their most recent row in the chat. Profile rowid
// carries the first-seen order used for the stable tie-break; the rowid
// survives upserts because ON CONFLICT updates in place.
const chatRankingSQL = `
	SELECT m.user_id, m.bmi
	FROM measurements m
	JOIN profiles p ON p.user_id = m.user_id AND p.chat_id = m.chat_id
	WHERE m.chat_id = ? AND m.measurement_date = (
		SELECT MAX(measurement_date) FROM measurements
		WHERE user_id = m.user_id AND chat_id = m.chat_id
	)
	ORDER BY m.bmi DESC, p.rowid ASC;`

const chatSnapshotSQL = `
	SELECT m.user_id, p.username, p.prefix, p.status, m.weight_kg, m.bmi, m.measurement_date
	FROM measurements m
	JOIN profiles p ON p.user_id = m.user_id AND p.chat_id = m.chat_id
	WHERE m.chat_id = ? AND m.measurement_date = (
		SELECT MAX(measurement_date) FROM measurements
		WHERE user_id = m.user_id AND chat_id = m.chat_id
	)
	ORDER BY m.bmi DESC, p.rowid ASC;`

// LatestHeight returns the most recent recorded height for (user, chat).
func (d *DB) LatestHeight(ctx context.Context, userID, chatID int64) (float64, bool, error) {
	return latestHeight(ctx, d.sql, userID, chatID)
}

// ChatRanking returns the chat's latest measurement per user, descending by
// BMI, ties in first-seen order.
func (d *DB) ChatRanking(ctx context.Context, chatID int64) ([]domain.RankEntry, error) {
	return chatRanking(ctx, d.sql, chatID)
}

// ChatLatestSnapshot returns one leaderboard row per user in the chat.
func (d *DB) ChatLatestSnapshot(ctx context.Context, chatID int64) ([]domain.LeaderboardRow, error) {
	return chatLatestSnapshot(ctx, d.sql, chatID)
}

func latestHeight(ctx context.Context, q dbtx, userID, chatID int64) (float64, bool, error) {
	var h float64
	err := q.QueryRowContext(ctx,
		`SELECT height_cm FROM measurements
		 WHERE user_id = ? AND chat_id = ? AND height_cm IS NOT NULL
		 ORDER BY measurement_date DESC LIMIT 1;`,
		userID, chatID,
	).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return h, true, nil
}

func chatRanking(ctx context.Context, q dbtx, chatID int64) ([]domain.RankEntry, error) {
	rows, err := q.QueryContext(ctx, chatRankingSQL, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RankEntry
	for rows.Next() {
		var e domain.RankEntry
		if err := rows.Scan(&e.UserID, &e.BMI); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func chatLatestSnapshot(ctx context.Context, q dbtx, chatID int64) ([]domain.LeaderboardRow, error) {
	rows, err := q.QueryContext(ctx, chatSnapshotSQL, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LeaderboardRow{}
	for rows.Next() {
		var r domain.LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Prefix, &r.Status, &r.WeightKg, &r.BMI, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func upsertMeasurement(ctx context.Context, q dbtx, m domain.Measurement) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO measurements (user_id, chat_id, height_cm, weight_kg, bmi, measurement_date)
		 VALUES (?, ?, NULLIF(?, 0.0), ?, ?, ?)
		 ON CONFLICT(user_id, chat_id, measurement_date) DO UPDATE SET
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			bmi = excluded.bmi;`,
		m.UserID, m.ChatID, m.HeightCm, m.WeightKg, m.BMI, m.Date,
	)
	return err
}
