package config

import "fmt"

type Config struct {
	Env                 string
	Port                int
	DatabaseURL         string
	JWTSecret           string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int
	BcryptCost          int
	AuthRatePerWindow   int
	AuthRateWindowMin   int
	APIRatePerMinute    int
	MailerURL           string
	MailerFromAddress   string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive, got %d", c.AccessTokenTTLMin)
	}
	if c.RefreshTokenTTLDays <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be positive, got %d", c.RefreshTokenTTLDays)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.AuthRatePerWindow <= 0 || c.AuthRateWindowMin <= 0 {
		return fmt.Errorf("auth rate limit settings must be positive")
	}
	if c.APIRatePerMinute <= 0 {
		return fmt.Errorf("API_RATE_PER_MINUTE must be positive, got %d", c.APIRatePerMinute)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "JWT_SECRET", value: c.JWTSecret},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
