// internal/config/config.go
//
// Runtime configuration for the game server.
//
// Values come from the process environment; a `.env` file in the working
// directory is loaded first when present (godotenv). Every key has a
// development default so `go run .` works out of the box.
//
//   PORT                listen port                          (5175)
//   LOG_LEVEL           zerolog level                        (info)
//   LOG_PRETTY          human-readable console logs          (false)
//   CLIENT_ORIGIN       allowed CORS / WebSocket origin      (http://localhost:5173)
//   JWT_SECRET          HMAC key of game session tokens      (dev_secret_change_me)
//   COOKIE_NAME         session token cookie                 (doanchu_session)
//   COOKIE_SECURE       Secure + SameSite=None cookies       (false)
//   WORDS_BANK_FILE     YAML word bank overriding the embedded one
//   TIMER_SECONDS       countdown per word, in ticks         (45)
//   TICK_INTERVAL       duration of one tick                 (1s)
//   ADVANCE_DELAY       pause after a correct answer         (1100ms)
//   SESSION_TTL         idle time before a game is evicted   (30m)
//   DAILY_SALT          HMAC salt of the daily challenge     (local_dev_salt)
//   HINT_BUDGET_STRICT  block hints once the budget is spent (false)

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/robalobadob/doanchu/internal/game"
)

// Config is the fully resolved server configuration.
type Config struct {
	Port         string
	LogLevel     string
	LogPretty    bool
	ClientOrigin string
	JWTSecret    string
	CookieName   string
	CookieSecure bool
	WordsFile    string
	TickInterval time.Duration
	AdvanceDelay time.Duration
	SessionTTL   time.Duration
	DailySalt    string
	Rules        game.Rules
}

// Load reads `.env` (if any) from path and resolves the configuration.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return FromEnv()
}

// FromEnv resolves the configuration from the environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		CookieName:   getEnv("COOKIE_NAME", "doanchu_session"),
		WordsFile:    os.Getenv("WORDS_BANK_FILE"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		Rules:        game.DefaultRules(),
	}

	var err error
	if c.LogPretty, err = envBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if c.CookieSecure, err = envBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if c.Rules.StrictHintBudget, err = envBool("HINT_BUDGET_STRICT", false); err != nil {
		return nil, err
	}
	if c.Rules.TimerSeconds, err = envInt("TIMER_SECONDS", c.Rules.TimerSeconds); err != nil {
		return nil, err
	}
	if c.TickInterval, err = envDuration("TICK_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if c.AdvanceDelay, err = envDuration("ADVANCE_DELAY", 1100*time.Millisecond); err != nil {
		return nil, err
	}
	if c.SessionTTL, err = envDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if err := c.Rules.Validate(); err != nil {
		return nil, err
	}
	if c.TickInterval <= 0 || c.SessionTTL <= 0 || c.AdvanceDelay < 0 {
		return nil, errors.New("config: TICK_INTERVAL and SESSION_TTL must be positive, ADVANCE_DELAY not negative")
	}
	return c, nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}

func envBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return d, nil
}
