package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/courtside/pkg/log"
)

type APIConfig struct {
	BaseURL string        `env:"COURTSIDE_API_URL,required,notEmpty"`
	APIKey  string        `env:"COURTSIDE_API_KEY"`
	Timeout time.Duration `env:"COURTSIDE_API_TIMEOUT" envDefault:"15s"`
}

func NewAPIConfig(ctx context.Context) *APIConfig {
	c := &APIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse API config")
	}
	return c
}
