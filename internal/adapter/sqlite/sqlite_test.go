package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fatrate/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "fatrate.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, userID, chatID int64, username string, height, weight, bmi float64, day string) {
	t.Helper()
	err := db.InChatUpdate(context.Background(), chatID, func(tx domain.ChatTx) error {
		ctx := context.Background()
		if err := tx.UpsertMeasurement(ctx, domain.Measurement{
			UserID: userID, ChatID: chatID,
			HeightCm: height, WeightKg: weight, BMI: bmi, Date: day,
		}); err != nil {
			return err
		}
		return tx.UpsertProfile(ctx, domain.Profile{
			UserID: userID, ChatID: chatID, Username: username,
		})
	})
	if err != nil {
		t.Fatalf("seed user %d: %v", userID, err)
	}
}

func TestLatestHeight(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, ok, err := db.LatestHeight(ctx, 1, 10)
	if err != nil {
		t.Fatalf("LatestHeight: %v", err)
	}
	if ok {
		t.Error("expected no height before any measurement")
	}

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	// A later row without height must not shadow the recorded one.
	err = db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		return tx.UpsertMeasurement(ctx, domain.Measurement{
			UserID: 1, ChatID: 10, WeightKg: 72, BMI: 24.9, Date: "2026-08-02",
		})
	})
	if err != nil {
		t.Fatalf("heightless row: %v", err)
	}

	h, ok, err := db.LatestHeight(ctx, 1, 10)
	if err != nil {
		t.Fatalf("LatestHeight: %v", err)
	}
	if !ok || h != 170 {
		t.Errorf("expected 170, got %v (ok=%v)", h, ok)
	}
}

func TestRankingOrderAndStableTies(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	seedUser(t, db, 2, 10, "bob", 180, 110, 33.9, "2026-08-01")
	seedUser(t, db, 3, 10, "carol", 170, 70, 24.2, "2026-08-01") // ties with alice

	ranking, err := db.ChatRanking(ctx, 10)
	if err != nil {
		t.Fatalf("ChatRanking: %v", err)
	}
	want := []int64{2, 1, 3}
	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(ranking))
	}
	for i, id := range want {
		if ranking[i].UserID != id {
			t.Errorf("position %d: expected user %d, got %d", i+1, id, ranking[i].UserID)
		}
	}

	// Upserting alice's profile must not move her tie position.
	err = db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		return tx.UpsertProfile(ctx, domain.Profile{
			UserID: 1, ChatID: 10, Username: "alice", Prefix: "Chad", Status: domain.StatusNormalWeight,
		})
	})
	if err != nil {
		t.Fatalf("profile upsert: %v", err)
	}
	ranking, _ = db.ChatRanking(ctx, 10)
	for i, id := range want {
		if ranking[i].UserID != id {
			t.Fatalf("tie order changed after profile upsert: %v", ranking)
		}
	}
}

func TestMeasurementUpsertSameDay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	err := db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		return tx.UpsertMeasurement(ctx, domain.Measurement{
			UserID: 1, ChatID: 10, HeightCm: 170, WeightKg: 80, BMI: 27.7, Date: "2026-08-01",
		})
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := db.ChatLatestSnapshot(ctx, 10)
	if err != nil {
		t.Fatalf("ChatLatestSnapshot: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row after same-day upsert, got %d", len(rows))
	}
	if rows[0].WeightKg != 80 || rows[0].BMI != 27.7 {
		t.Errorf("expected replaced weight/bmi, got %+v", rows[0])
	}
}

func TestChatIsolation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	seedUser(t, db, 1, 20, "alice", 170, 90, 31.1, "2026-08-01")

	r10, _ := db.ChatRanking(ctx, 10)
	r20, _ := db.ChatRanking(ctx, 20)
	if len(r10) != 1 || len(r20) != 1 {
		t.Fatalf("expected one entry per chat, got %d and %d", len(r10), len(r20))
	}
	if r10[0].BMI == r20[0].BMI {
		t.Error("expected per-chat measurements to stay separate")
	}
}

func TestInChatUpdateRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")

	boom := errors.New("boom")
	err := db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		if err := tx.UpsertMeasurement(ctx, domain.Measurement{
			UserID: 2, ChatID: 10, HeightCm: 180, WeightKg: 110, BMI: 33.9, Date: "2026-08-01",
		}); err != nil {
			return err
		}
		// The transaction must see its own write...
		ranking, err := tx.ChatRanking(ctx, 10)
		if err != nil {
			return err
		}
		if len(ranking) != 1 {
			// user 2 has no profile yet, so only alice ranks
			t.Errorf("expected 1 ranked user mid-tx, got %d", len(ranking))
		}
		if err := tx.UpsertProfile(ctx, domain.Profile{UserID: 2, ChatID: 10, Username: "bob"}); err != nil {
			return err
		}
		ranking, err = tx.ChatRanking(ctx, 10)
		if err != nil {
			return err
		}
		if len(ranking) != 2 {
			t.Errorf("expected 2 ranked users mid-tx, got %d", len(ranking))
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// ...and none of it may survive the rollback.
	ranking, _ := db.ChatRanking(ctx, 10)
	if len(ranking) != 1 || ranking[0].UserID != 1 {
		t.Errorf("rollback failed: %v", ranking)
	}
	p, _ := db.GetProfile(ctx, 2, 10)
	if p != nil {
		t.Errorf("rollback failed, profile survived: %+v", p)
	}
}

func TestCrossChatUpdatesBothSucceed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	seedUser(t, db, 1, 20, "alice", 170, 70, 24.2, "2026-08-01")

	// Chat 10 reads, then writes after chat 20's whole update has been
	// kicked off. The second writer has to queue until the first commits;
	// neither update may fail.
	other := make(chan error, 1)
	err := db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		if _, _, err := tx.LatestHeight(ctx, 1, 10); err != nil {
			return err
		}
		go func() {
			other <- db.InChatUpdate(ctx, 20, func(tx domain.ChatTx) error {
				return tx.UpsertMeasurement(ctx, domain.Measurement{
					UserID: 1, ChatID: 20, HeightCm: 170, WeightKg: 90, BMI: 31.1, Date: "2026-08-02",
				})
			})
		}()
		time.Sleep(100 * time.Millisecond)
		return tx.UpsertMeasurement(ctx, domain.Measurement{
			UserID: 1, ChatID: 10, HeightCm: 170, WeightKg: 75, BMI: 26.0, Date: "2026-08-02",
		})
	})
	if err != nil {
		t.Fatalf("chat 10 update: %v", err)
	}
	if err := <-other; err != nil {
		t.Fatalf("chat 20 update: %v", err)
	}

	r10, _ := db.ChatLatestSnapshot(ctx, 10)
	r20, _ := db.ChatLatestSnapshot(ctx, 20)
	if len(r10) != 1 || r10[0].WeightKg != 75 {
		t.Errorf("chat 10 write lost: %+v", r10)
	}
	if len(r20) != 1 || r20[0].WeightKg != 90 {
		t.Errorf("chat 20 write lost: %+v", r20)
	}
}

func TestGetProfile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p, err := db.GetProfile(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for unknown profile, got %+v", p)
	}

	seedUser(t, db, 1, 10, "alice", 170, 70, 24.2, "2026-08-01")
	err = db.InChatUpdate(ctx, 10, func(tx domain.ChatTx) error {
		return tx.UpsertProfile(ctx, domain.Profile{
			UserID: 1, ChatID: 10, Username: "alice", Prefix: "Chad", Status: domain.StatusNormalWeight,
		})
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p, err = db.GetProfile(ctx, 1, 10)
	if err != nil || p == nil {
		t.Fatalf("GetProfile: %v, %v", p, err)
	}
	if p.Prefix != "Chad" || p.Status != domain.StatusNormalWeight {
		t.Errorf("unexpected profile: %+v", p)
	}
}
