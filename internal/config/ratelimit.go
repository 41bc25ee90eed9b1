package config

// RateLimitConfig configures one sliding-window limiter instance. The
// public submission endpoint and the consent-logging endpoint carry
// separate instances with independent caps over the same window.
type RateLimitConfig struct {
	Enabled bool
	Max     int // requests allowed per identity within the window
	Window  int // window length in seconds
	Prefix  string
}

// LoadRateLimitConfig reads the limiter settings for the given prefix
// (e.g. "BOOKING", "CONSENT"). Environment variables follow the shape
// RATE_LIMIT_<PREFIX>_MAX / _WINDOW_SECONDS; defMax is used when the
// cap is unset.
func LoadRateLimitConfig(prefix string, defMax int) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envInt("RATE_LIMIT_ENABLED", 1) != 0,
		Max:     envInt("RATE_LIMIT_"+prefix+"_MAX", defMax),
		Window:  envInt("RATE_LIMIT_"+prefix+"_WINDOW_SECONDS", 60),
		Prefix:  "rl:" + prefix,
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window < 1 {
		cfg.Window = 60
	}
	return cfg
}
