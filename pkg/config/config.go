package config

import (
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"
)

const (
	DefaultDBPath      = "data/novels.db"
	DefaultAPIURL      = "http://localhost:5000"
	DefaultExportDir   = "exports"
	DefaultRateLimit   = 5 // requests per second against the platform API
	DefaultCacheTTL    = 5 * time.Minute
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds the settings shared by the CLI and the TUI.
type Config struct {
	DBPath      string
	APIURL      string
	AssetURL    string // media host; falls back to APIURL
	Username    string // local user to read as; empty means anonymous
	ExportDir   string
	RateLimit   float64
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
	Remote      bool   // read through the platform API instead of the local library
	LogFile     string // where the TUI writes its logs; empty discards them
}

// Load reads the NOVELS_* environment variables over the defaults.
func Load() *Config {
	cfg := &Config{
		DBPath:      envutil.GetEnv("NOVELS_DB", DefaultDBPath),
		APIURL:      envutil.GetEnv("NOVELS_API_URL", DefaultAPIURL),
		AssetURL:    envutil.GetEnv("NOVELS_ASSET_URL", ""),
		Username:    envutil.GetEnv("NOVELS_USER", ""),
		ExportDir:   envutil.GetEnv("NOVELS_EXPORT_DIR", DefaultExportDir),
		RateLimit:   parseFloat(envutil.GetEnv("NOVELS_RATE_LIMIT", ""), DefaultRateLimit),
		CacheTTL:    parseDuration(envutil.GetEnv("NOVELS_CACHE_TTL", ""), DefaultCacheTTL),
		HTTPTimeout: parseDuration(envutil.GetEnv("NOVELS_HTTP_TIMEOUT", ""), DefaultHTTPTimeout),
		Remote:      parseBool(envutil.GetEnv("NOVELS_REMOTE", "")),
		LogFile:     envutil.GetEnv("NOVELS_LOG", ""),
	}
	return cfg
}

// Assets is the base URL media references are resolved against.
func (c *Config) Assets() string {
	if c.AssetURL != "" {
		return c.AssetURL
	}
	return c.APIURL
}

func parseFloat(raw string, def float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
