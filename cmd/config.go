package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	BufferSize                int           `env:"BUFFER_SIZE,default=64"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ReportInterval            time.Duration `env:"REPORT_INTERVAL,default=30s"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AuthSigningKey            string        `env:"AUTH_SIGNING_KEY,required=true"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,default=info"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	DebugPort                 int           `env:"DEBUG_PORT"`
	AllowedOrigins            string        `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	RateLimitPerSecond        float64       `env:"RATE_LIMIT_PER_SECOND,default=15"`
	RateLimitBurst            int           `env:"RATE_LIMIT_BURST,default=30"`
	RateLimitIdleTTL          time.Duration `env:"RATE_LIMIT_IDLE_TTL,default=10m"`
}

// Origins splits the comma separated ALLOWED_ORIGINS value.
func (c Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// CensorRune validates that the replacement value is a single character.
func (c Config) CensorRune() (rune, error) {
	r := []rune(c.ModerationCharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			c.ModerationCharReplacement,
		)
	}
	return r[0], nil
}
