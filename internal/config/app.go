package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/courtside/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"COURTSIDE_RUNTIME_PATH" envDefault:".courtside"`

	// Timezone is the fixed reference timezone all day buckets are
	// computed in, regardless of where the process runs.
	Timezone string `env:"COURTSIDE_TIMEZONE" envDefault:"America/New_York"`

	// RefreshInterval paces the background refresh rounds.
	RefreshInterval time.Duration `env:"COURTSIDE_REFRESH_INTERVAL" envDefault:"60s"`

	// FetchLimit caps how many events one round requests from the source.
	FetchLimit int `env:"COURTSIDE_FETCH_LIMIT" envDefault:"500"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "courtside.db")
}

// Location resolves the reference timezone. An unknown identifier is a
// startup failure, not a silent fallback, because a wrong zone silently
// shifts every day bucket.
func (c AppConfig) Location(ctx context.Context) *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Str("timezone", c.Timezone).Msg("unknown reference timezone")
	}
	return loc
}
