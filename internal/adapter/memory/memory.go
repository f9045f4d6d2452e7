// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"fatrate/internal/domain"
)

// DB implements an in-memory database storage. Profiles keep their
// insertion order, which doubles as the first-seen tie-break for rankings.
type DB struct {
	mu           sync.Mutex
	measurements []domain.Measurement
	profiles     []domain.Profile

	// ProfileHook, when set, runs before every profile write inside a
	// chat update. Returning an error aborts and rolls back the update.
	// Test hook for fault injection.
	ProfileHook func(p domain.Profile) error
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.Store = (*DB)(nil)
var _ domain.ChatTx = (*memTx)(nil)

// LatestHeight returns the most recent recorded height for (user, chat).
func (db *DB) LatestHeight(ctx context.Context, userID, chatID int64) (float64, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.latestHeight(userID, chatID)
}

// ChatRanking returns the chat's latest measurement per user, descending by
// BMI, ties in first-seen order.
func (db *DB) ChatRanking(ctx context.Context, chatID int64) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.chatRanking(chatID)
}

// GetProfile returns the profile for (user, chat), or nil when absent.
func (db *DB) GetProfile(ctx context.Context, userID, chatID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.getProfile(userID, chatID)
}

// ChatLatestSnapshot returns one leaderboard row per user in the chat.
func (db *DB) ChatLatestSnapshot(ctx context.Context, chatID int64) ([]domain.LeaderboardRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.chatLatestSnapshot(chatID)
}

// InChatUpdate runs fn against a transactional view. On error the store is
// restored to its pre-update state.
func (db *DB) InChatUpdate(ctx context.Context, chatID int64, fn func(tx domain.ChatTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	savedMeasurements := slices.Clone(db.measurements)
	savedProfiles := slices.Clone(db.profiles)

	if err := fn(&memTx{db: db}); err != nil {
		db.measurements = savedMeasurements
		db.profiles = savedProfiles
		return err
	}
	return nil
}

// memTx exposes the write operations while the DB mutex is held by
// InChatUpdate, so it reads through the unlocked internals.
type memTx struct {
	db *DB
}

func (t *memTx) LatestHeight(ctx context.Context, userID, chatID int64) (float64, bool, error) {
	return t.db.latestHeight(userID, chatID)
}

func (t *memTx) ChatRanking(ctx context.Context, chatID int64) ([]domain.RankEntry, error) {
	return t.db.chatRanking(chatID)
}

func (t *memTx) GetProfile(ctx context.Context, userID, chatID int64) (*domain.Profile, error) {
	return t.db.getProfile(userID, chatID)
}

func (t *memTx) ChatLatestSnapshot(ctx context.Context, chatID int64) ([]domain.LeaderboardRow, error) {
	return t.db.chatLatestSnapshot(chatID)
}

func (t *memTx) UpsertMeasurement(ctx context.Context, m domain.Measurement) error {
	for i := range t.db.measurements {
		cur := &t.db.measurements[i]
		if cur.UserID == m.UserID && cur.ChatID == m.ChatID && cur.Date == m.Date {
			*cur = m
			return nil
		}
	}
	t.db.measurements = append(t.db.measurements, m)
	return nil
}

func (t *memTx) UpsertProfile(ctx context.Context, p domain.Profile) error {
	if t.db.ProfileHook != nil {
		if err := t.db.ProfileHook(p); err != nil {
			return err
		}
	}
	for i := range t.db.profiles {
		cur := &t.db.profiles[i]
		if cur.UserID == p.UserID && cur.ChatID == p.ChatID {
			*cur = p
			return nil
		}
	}
	t.db.profiles = append(t.db.profiles, p)
	return nil
}

// --- unlocked internals ---

func (db *DB) latestHeight(userID, chatID int64) (float64, bool, error) {
	height := 0.0
	latestDay := ""
	for i := range db.measurements {
		m := &db.measurements[i]
		if m.UserID != userID || m.ChatID != chatID || m.HeightCm == 0 {
			continue
		}
		// Dates are YYYY-MM-DD, so string order is date order.
		if m.Date >= latestDay {
			latestDay = m.Date
			height = m.HeightCm
		}
	}
	return height, latestDay != "", nil
}

func (db *DB) latestMeasurement(userID, chatID int64) *domain.Measurement {
	var latest *domain.Measurement
	for i := range db.measurements {
		m := &db.measurements[i]
		if m.UserID != userID || m.ChatID != chatID {
			continue
		}
		if latest == nil || m.Date >= latest.Date {
			latest = m
		}
	}
	return latest
}

func (db *DB) getProfile(userID, chatID int64) (*domain.Profile, error) {
	for i := range db.profiles {
		if db.profiles[i].UserID == userID && db.profiles[i].ChatID == chatID {
			p := db.profiles[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (db *DB) chatRanking(chatID int64) ([]domain.RankEntry, error) {
	entries := make([]domain.RankEntry, 0, len(db.profiles))
	// Walk profiles in insertion order so the stable sort keeps first-seen
	// order among equal BMIs.
	for i := range db.profiles {
		p := &db.profiles[i]
		if p.ChatID != chatID {
			continue
		}
		m := db.latestMeasurement(p.UserID, chatID)
		if m == nil {
			continue
		}
		entries = append(entries, domain.RankEntry{UserID: p.UserID, BMI: m.BMI})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BMI > entries[j].BMI
	})
	return entries, nil
}

func (db *DB) chatLatestSnapshot(chatID int64) ([]domain.LeaderboardRow, error) {
	rows := make([]domain.LeaderboardRow, 0, len(db.profiles))
	for i := range db.profiles {
		p := &db.profiles[i]
		if p.ChatID != chatID {
			continue
		}
		m := db.latestMeasurement(p.UserID, chatID)
		if m == nil {
			continue
		}
		rows = append(rows, domain.LeaderboardRow{
			UserID:   p.UserID,
			Username: p.Username,
			Prefix:   p.Prefix,
			Status:   p.Status,
			WeightKg: m.WeightKg,
			BMI:      m.BMI,
			Date:     m.Date,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].BMI > rows[j].BMI
	})
	return rows, nil
}
