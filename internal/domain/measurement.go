// Package domain contains the core business entities and interfaces.
package domain

import "context"

// Measurement is one weight/height reading for a (user, chat) pair on a
// given day. Height is 0 when the caller did not supply one; BMI is always
// derived from the last known height, never stored independently.
type Measurement struct {
	UserID   int64   `json:"userId"`
	ChatID   int64   `json:"chatId"`
	HeightCm float64 `json:"heightCm,omitempty"`
	WeightKg float64 `json:"weightKg"`
	BMI      float64 `json:"bmi"`
	Date     string  `json:"date"` // YYYY-MM-DD
}

// Profile is the derived per-(user, chat) leaderboard state: the cached
// title and health status for the user's current rank.
type Profile struct {
	UserID   int64  `json:"userId"`
	ChatID   int64  `json:"chatId"`
	Username string `json:"username"`
	Prefix   string `json:"prefix"`
	Status   Status `json:"status"`
}

// RankEntry is one position in a chat's descending-BMI ordering.
type RankEntry struct {
	UserID int64
	BMI    float64
}

// LeaderboardRow is one rendered leaderboard line: the user's latest
// measurement joined with their current profile.
type LeaderboardRow struct {
	Position int     `json:"position"`
	UserID   int64   `json:"userId"`
	Username string  `json:"username"`
	Prefix   string  `json:"prefix"`
	Status   Status  `json:"status"`
	WeightKg float64 `json:"weightKg"`
	BMI      float64 `json:"bmi"`
	Date     string  `json:"date"`
}

// StoreReader is the read side of the store port. Rankings and snapshots
// are chat-scoped: descending BMI, ties broken by the order in which users
// first appeared in the chat.
type StoreReader interface {
	LatestHeight(ctx context.Context, userID, chatID int64) (float64, bool, error)
	ChatRanking(ctx context.Context, chatID int64) ([]RankEntry, error)
	GetProfile(ctx context.Context, userID, chatID int64) (*Profile, error)
	ChatLatestSnapshot(ctx context.Context, chatID int64) ([]LeaderboardRow, error)
}

// ChatTx is the write side, valid only inside Store.InChatUpdate. Reads
// through a ChatTx observe the transaction's own pending writes.
type ChatTx interface {
	StoreReader
	// UpsertMeasurement inserts or replaces the row keyed by
	// (user, chat, date).
	UpsertMeasurement(ctx context.Context, m Measurement) error
	// UpsertProfile inserts or replaces the row keyed by (user, chat).
	// Writing identical values is a no-op.
	UpsertProfile(ctx context.Context, p Profile) error
}

// Store is the port for leaderboard persistence. InChatUpdate runs fn
// inside a single transaction; if fn returns an error every write made
// through the ChatTx is rolled back.
type Store interface {
	StoreReader
	InChatUpdate(ctx context.Context, chatID int64, fn func(tx ChatTx) error) error
}
