package app

import (
	"context"
	"fmt"
	"log/slog"

	"fatrate/internal/domain"
)

// anonymousName is shown for users without a username.
const anonymousName = "Anonymous"

// LeaderboardService serves the read paths: the rendered chat leaderboard
// and individual profiles.
type LeaderboardService struct {
	store domain.StoreReader
	log   *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService over the given store.
func NewLeaderboardService(store domain.StoreReader, log *slog.Logger) *LeaderboardService {
	return &LeaderboardService{store: store, log: log}
}

// Leaderboard returns the chat's participants in descending BMI order with
// 1-based positions. An empty chat yields an empty slice.
func (s *LeaderboardService) Leaderboard(ctx context.Context, chatID int64) ([]domain.LeaderboardRow, error) {
	rows, err := s.store.ChatLatestSnapshot(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("chat snapshot: %w", err)
	}
	for i := range rows {
		rows[i].Position = i + 1
		if rows[i].Username == "" {
			rows[i].Username = anonymousName
		}
	}
	return rows, nil
}

// Profile returns the stored profile for (user, chat), or ErrUserNotFound.
func (s *LeaderboardService) Profile(ctx context.Context, userID, chatID int64) (*domain.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, ErrUserNotFound
	}
	return p, nil
}
