package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v4"

	"github.com/no-panic/callserver/internal/ice"
)

// Default configuration values
const (
	DefaultAddr       = ":8080"
	DefaultOrigins    = "*"
	DefaultEventRate  = 50.0
	DefaultEventBurst = 100
	DefaultSendBuffer = 256
	DefaultEnvFile    = ".env"
)

// Config holds the call server configuration
type Config struct {
	// Addr is the listen address of the HTTP server
	Addr string

	// AllowedOrigins is checked against the Origin header on CORS and
	// WebSocket requests. "*" allows any origin.
	AllowedOrigins []string

	// Per-connection inbound event limit; EventRate 0 disables it
	EventRate  float64
	EventBurst int

	// SendBuffer is the outbound queue length per connection
	SendBuffer int

	// RequireMembership drops signal/toggleVideo for rooms the sender is not in
	RequireMembership bool

	// ReportErrors answers dropped events with an "error" message
	ReportErrors bool

	// ICE servers handed to browsers
	ICEServers []webrtc.ICEServer
}

// Options carries CLI flag overrides. nil / empty means "not set".
type Options struct {
	EnvFile string

	Addr              string
	AllowedOrigins    string
	EventRate         *float64
	EventBurst        *int
	SendBuffer        *int
	RequireMembership *bool
	ReportErrors      *bool

	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ICEServers string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (an optional .env file is loaded first and never
//    overrides variables already set)
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Addr:           pick(opts.Addr, "ADDR", DefaultAddr),
		AllowedOrigins: splitList(pick(opts.AllowedOrigins, "ALLOWED_ORIGINS", DefaultOrigins)),
	}

	var err error
	if cfg.EventRate, err = pickFloat(opts.EventRate, "EVENT_RATE", DefaultEventRate); err != nil {
		return nil, err
	}
	if cfg.EventBurst, err = pickInt(opts.EventBurst, "EVENT_BURST", DefaultEventBurst); err != nil {
		return nil, err
	}
	if cfg.SendBuffer, err = pickInt(opts.SendBuffer, "SEND_BUFFER", DefaultSendBuffer); err != nil {
		return nil, err
	}
	if cfg.RequireMembership, err = pickBool(opts.RequireMembership, "SIGNAL_REQUIRE_MEMBERSHIP", false); err != nil {
		return nil, err
	}
	if cfg.ReportErrors, err = pickBool(opts.ReportErrors, "REPORT_ERRORS", false); err != nil {
		return nil, err
	}

	cfg.ICEServers, err = ice.Servers(ice.Options{
		STUN:     pick(opts.STUNServer, "STUN_SERVER", ice.DefaultSTUN),
		TURN:     pick(opts.TURNServer, "TURN_SERVER", ""),
		TURNUser: pick(opts.TURNUser, "TURN_USERNAME", ""),
		TURNPass: pick(opts.TURNPass, "TURN_PASSWORD", ""),
		JSON:     pick(opts.ICEServers, "ICE_SERVERS", ""),
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return errors.New("listen address is empty")
	case len(c.AllowedOrigins) == 0:
		return errors.New("at least one allowed origin is required")
	case c.EventRate < 0:
		return fmt.Errorf("event rate must not be negative, got %v", c.EventRate)
	case c.EventRate > 0 && c.EventBurst < 1:
		return fmt.Errorf("event burst must be at least 1, got %d", c.EventBurst)
	case c.SendBuffer < 1:
		return fmt.Errorf("send buffer must be at least 1, got %d", c.SendBuffer)
	}
	return nil
}

// AllowsAnyOrigin reports whether the origin list contains "*".
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func pick(flag, env, def string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func pickFloat(flag *float64, env string, def float64) (float64, error) {
	if flag != nil {
		return *flag, nil
	}
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	return f, nil
}

func pickInt(flag *int, env string, def int) (int, error) {
	if flag != nil {
		return *flag, nil
	}
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	return n, nil
}

func pickBool(flag *bool, env string, def bool) (bool, error) {
	if flag != nil {
		return *flag, nil
	}
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
