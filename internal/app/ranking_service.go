// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fatrate/internal/domain"
)

var (
	// ErrValidation indicates malformed or out-of-range numeric input.
	ErrValidation = errors.New("invalid input")
	// ErrMissingHeight indicates that no height was supplied and none has
	// ever been recorded for the user in this chat.
	ErrMissingHeight = errors.New("no height recorded for user")
	// ErrUserNotFound indicates that no profile exists for the (user, chat)
	// pair.
	ErrUserNotFound = errors.New("user not found")
)

// Result is what a successful measurement event yields for its subject.
type Result struct {
	BMI    float64       `json:"bmi"`
	Prefix string        `json:"prefix"`
	Status domain.Status `json:"status"`
}

// RankingService is the consistency engine: every measurement event
// recomputes the full chat ordering and rewrites every profile whose title
// or status went stale, inside one store transaction. The service holds no
// state of its own beyond the per-chat locks.
type RankingService struct {
	store  domain.Store
	titles *domain.TitlePicker
	locks  chatLocks
	log    *slog.Logger
}

// NewRankingService creates a RankingService backed by the given store,
// title picker and logger.
func NewRankingService(store domain.Store, titles *domain.TitlePicker, log *slog.Logger) *RankingService {
	return &RankingService{store: store, titles: titles, log: log}
}

// AddMeasurement records a measurement for (user, chat) on the given day
// (today when day is empty) and returns the resulting BMI, title and
// status. Height may be omitted after the first entry; the last known
// height is then reused. Numeric bounds are the caller's responsibility;
// only presence and positivity are checked here.
func (s *RankingService) AddMeasurement(ctx context.Context, userID, chatID int64, username string, heightCm, weightKg float64, day string) (Result, error) {
	if weightKg <= 0 {
		return Result{}, fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	if heightCm < 0 {
		return Result{}, fmt.Errorf("%w: height must be positive", ErrValidation)
	}
	if day == "" {
		day = today()
	}

	lock := s.locks.get(chatID)
	lock.Lock()
	defer lock.Unlock()

	var res Result
	err := s.store.InChatUpdate(ctx, chatID, func(tx domain.ChatTx) error {
		h := heightCm
		if h == 0 {
			prev, ok, err := tx.LatestHeight(ctx, userID, chatID)
			if err != nil {
				return fmt.Errorf("latest height: %w", err)
			}
			if !ok {
				return ErrMissingHeight
			}
			h = prev
		}

		bmi := domain.ComputeBMI(h, weightKg)
		m := domain.Measurement{
			UserID:   userID,
			ChatID:   chatID,
			HeightCm: h,
			WeightKg: weightKg,
			BMI:      bmi,
			Date:     day,
		}
		if err := tx.UpsertMeasurement(ctx, m); err != nil {
			return fmt.Errorf("upsert measurement: %w", err)
		}

		if err := s.ensureProfile(ctx, tx, userID, chatID, username); err != nil {
			return err
		}

		var err error
		res, err = s.rewriteProfiles(ctx, tx, chatID, userID)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("measurement recorded",
		slog.Int64("user_id", userID),
		slog.Int64("chat_id", chatID),
		slog.Float64("bmi", res.BMI),
		slog.String("status", string(res.Status)))
	return res, nil
}

// UpdateWeight records a new weight for an already known (user, chat) on
// the given day (today when empty), reusing the last known height.
func (s *RankingService) UpdateWeight(ctx context.Context, userID, chatID int64, weightKg float64, day string) (Result, error) {
	if weightKg <= 0 {
		return Result{}, fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	if day == "" {
		day = today()
	}

	lock := s.locks.get(chatID)
	lock.Lock()
	defer lock.Unlock()

	var res Result
	err := s.store.InChatUpdate(ctx, chatID, func(tx domain.ChatTx) error {
		cur, err := tx.GetProfile(ctx, userID, chatID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		if cur == nil {
			return ErrUserNotFound
		}

		h, ok, err := tx.LatestHeight(ctx, userID, chatID)
		if err != nil {
			return fmt.Errorf("latest height: %w", err)
		}
		if !ok {
			return ErrMissingHeight
		}

		bmi := domain.ComputeBMI(h, weightKg)
		m := domain.Measurement{
			UserID:   userID,
			ChatID:   chatID,
			HeightCm: h,
			WeightKg: weightKg,
			BMI:      bmi,
			Date:     day,
		}
		if err := tx.UpsertMeasurement(ctx, m); err != nil {
			return fmt.Errorf("upsert measurement: %w", err)
		}

		res, err = s.rewriteProfiles(ctx, tx, chatID, userID)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("weight updated",
		slog.Int64("user_id", userID),
		slog.Int64("chat_id", chatID),
		slog.Float64("bmi", res.BMI),
		slog.String("status", string(res.Status)))
	return res, nil
}

// ensureProfile creates the profile row on a user's first measurement, or
// refreshes the username on later ones. Prefix and status are left to the
// rewrite pass that follows.
func (s *RankingService) ensureProfile(ctx context.Context, tx domain.ChatTx, userID, chatID int64, username string) error {
	cur, err := tx.GetProfile(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	p := domain.Profile{UserID: userID, ChatID: chatID, Username: username}
	if cur != nil {
		p.Prefix = cur.Prefix
		p.Status = cur.Status
		if username == "" {
			p.Username = cur.Username
		}
		if p == *cur {
			return nil
		}
	}
	if err := tx.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// rewriteProfiles re-reads the full chat ranking (including the pending
// measurement write) and rewrites every profile whose title or status no
// longer matches the ordering. Returns the subject user's result.
func (s *RankingService) rewriteProfiles(ctx context.Context, tx domain.ChatTx, chatID, subjectID int64) (Result, error) {
	ranking, err := tx.ChatRanking(ctx, chatID)
	if err != nil {
		return Result{}, fmt.Errorf("chat ranking: %w", err)
	}

	var res Result
	total := len(ranking)
	for i, e := range ranking {
		position := i + 1
		prefix := s.titles.Pick(position, total, e.BMI)
		status := domain.StatusOf(e.BMI)

		cur, err := tx.GetProfile(ctx, e.UserID, chatID)
		if err != nil {
			return Result{}, fmt.Errorf("get profile: %w", err)
		}
		if cur == nil {
			return Result{}, fmt.Errorf("ranked user %d has no profile in chat %d", e.UserID, chatID)
		}

		if cur.Prefix != prefix || cur.Status != status {
			cur.Prefix = prefix
			cur.Status = status
			if err := tx.UpsertProfile(ctx, *cur); err != nil {
				return Result{}, fmt.Errorf("upsert profile: %w", err)
			}
			s.log.Debug("profile rewritten",
				slog.Int64("user_id", e.UserID),
				slog.Int64("chat_id", chatID),
				slog.Int("position", position),
				slog.String("status", string(status)))
		}

		if e.UserID == subjectID {
			res = Result{BMI: e.BMI, Prefix: cur.Prefix, Status: cur.Status}
		}
	}
	return res, nil
}

func today() string {
	return time.Now().In(time.Local).Format("2006-01-02")
}
