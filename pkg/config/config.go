// Package config handles application configuration from environment variables.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the SPOC backend every endpoint path is resolved against.
const DefaultBaseURL = "https://spoc.buaa.edu.cn/spocnewht"

// Config holds all application configuration.
type Config struct {
	// Remote API
	BaseURL        string
	Origin         string
	RequestTimeout time.Duration

	// Transport settings
	GlobalProxy    string
	DisableSSL     bool
	TLSFingerprint bool // Use a Chrome ClientHello instead of the Go TLS stack

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	baseURL := strings.TrimRight(getEnvString("SPOC_BASE_URL", DefaultBaseURL), "/")
	return &Config{
		BaseURL:        baseURL,
		Origin:         getEnvString("SPOC_ORIGIN", originOf(baseURL)),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		GlobalProxy:    os.Getenv("GLOBAL_PROXY"),
		DisableSSL:     getEnvBool("DISABLE_SSL", false),
		TLSFingerprint: getEnvBool("TLS_FINGERPRINT", false),
		LogLevel:       getEnvString("LOG_LEVEL", "info"),
		LogJSON:        getEnvBool("LOG_JSON", false),
	}
}

// originOf returns scheme://host of rawURL, or rawURL itself when it is not
// an absolute URL.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return strings.ToLower(val) == "true" || val == "1"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
