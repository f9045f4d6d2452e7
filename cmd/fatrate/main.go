package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	adapthttp "fatrate/internal/adapter/http"
	"fatrate/internal/adapter/postgres"
	"fatrate/internal/adapter/sqlite"
	"fatrate/internal/app"
	"fatrate/internal/config"
	"fatrate/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	log := newLogger(cfg.Log)

	var store domain.Store
	var closer io.Closer
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", slog.Any("err", err))
			os.Exit(1)
		}
		store, closer = db, db
		log.Info("store ready", slog.String("driver", "postgres"))
	} else {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error("sqlite open failed", slog.Any("err", err))
			os.Exit(1)
		}
		store, closer = db, db
		log.Info("store ready", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLitePath))
	}
	defer func() { _ = closer.Close() }()

	ranking := app.NewRankingService(store, domain.NewTitlePicker(), log)
	leaderboard := app.NewLeaderboardService(store, log)
	h := adapthttp.New(ranking, leaderboard, log).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var w io.Writer = os.Stdout
	noColor := false
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err == nil {
			w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Dir, "fatrate.log"),
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
			noColor = true
		}
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}))
}
