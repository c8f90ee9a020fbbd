package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/courtside/internal/client"
	"github.com/sandevgo/courtside/internal/config"
	"github.com/sandevgo/courtside/internal/core"
	"github.com/sandevgo/courtside/internal/scheduler"
	"github.com/sandevgo/courtside/internal/storage/sqlite"
	"github.com/sandevgo/courtside/internal/transport/telegram"
	"github.com/sandevgo/courtside/pkg/log"
	"github.com/sandevgo/courtside/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	apiCfg := config.NewAPIConfig(ctx)
	loc := appCfg.Location(ctx)

	// 2. Storage (warm-start snapshot)
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	store := sqlite.NewSnapshotRepo(db)

	// 3. Events API client
	source := client.New(apiCfg)

	// 4. Optional digest transport
	var notifier *telegram.Notifier
	if appCfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		notifier, err = telegram.NewNotifier(tgCfg, loc)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram notifier")
		}
	}

	// 5. Refresh scheduler
	var sched *scheduler.Scheduler
	sched = scheduler.New(scheduler.Config{
		Source:     source,
		Interval:   appCfg.RefreshInterval,
		Location:   loc,
		Clock:      core.SystemClock{},
		FetchLimit: appCfg.FetchLimit,
		Filter: core.FilterState{
			League:    core.LeagueAll,
			Bucket:    core.BucketToday,
			Direction: core.SortSoonest,
		},
		OnUpdate: func(u scheduler.Update) {
			onUpdate(ctx, u, sched, store, notifier)
		},
	})

	if snap, ok, loadErr := store.Load(ctx); loadErr != nil {
		logger.Warn().Err(loadErr).Msg("failed to load snapshot, starting cold")
	} else if ok {
		sched.Seed(snap)
		logger.Info().Time("fetched_at", snap.FetchedAt).Int("events", len(snap.Events)).Msg("warm-started from snapshot")
	}

	services = append(services, sched)

	return services
}

func onUpdate(ctx context.Context, u scheduler.Update, sched *scheduler.Scheduler, store core.SnapshotStore, notifier *telegram.Notifier) {
	logger := log.FromCtx(ctx)

	if u.Err != nil {
		// Round failed; the last-known-good feed stays on display.
		return
	}

	logger.Info().
		Int("records", len(u.Result.Records)).
		Bool("background", u.Background).
		Bool("used_fallback", u.Result.UsedFallback).
		Msg("feed refreshed")

	if snap, ok := sched.LastSnapshot(); ok {
		if err := store.Save(ctx, snap); err != nil {
			logger.Warn().Err(err).Msg("failed to persist snapshot")
		}
	}

	if notifier != nil && !u.Background {
		if err := notifier.SendDigest(ctx, u.Result, time.Now()); err != nil {
			logger.Warn().Err(err).Msg("failed to send digest")
		}
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
