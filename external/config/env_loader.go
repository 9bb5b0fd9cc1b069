package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/oakmontlabs/timepunch/internal/config"
)

type envConfig struct {
	Env                 string `env:"ENV" envDefault:"production"`
	Port                int    `env:"PORT" envDefault:"8080"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	JWTSecret           string `env:"JWT_SECRET,required"`
	AccessTokenTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
	RefreshTokenTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
	BcryptCost          int    `env:"BCRYPT_COST" envDefault:"12"`
	AuthRatePerWindow   int    `env:"AUTH_RATE_PER_WINDOW" envDefault:"5"`
	AuthRateWindowMin   int    `env:"AUTH_RATE_WINDOW_MIN" envDefault:"15"`
	APIRatePerMinute    int    `env:"API_RATE_PER_MINUTE" envDefault:"100"`
	MailerURL           string `env:"MAILER_URL"`
	MailerFromAddress   string `env:"MAILER_FROM_ADDRESS" envDefault:"no-reply@timepunch.local"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                 raw.Env,
		Port:                raw.Port,
		DatabaseURL:         raw.DatabaseURL,
		JWTSecret:           raw.JWTSecret,
		AccessTokenTTLMin:   raw.AccessTokenTTLMin,
		RefreshTokenTTLDays: raw.RefreshTokenTTLDays,
		BcryptCost:          raw.BcryptCost,
		AuthRatePerWindow:   raw.AuthRatePerWindow,
		AuthRateWindowMin:   raw.AuthRateWindowMin,
		APIRatePerMinute:    raw.APIRatePerMinute,
		MailerURL:           raw.MailerURL,
		MailerFromAddress:   raw.MailerFromAddress,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
