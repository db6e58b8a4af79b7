package clist

import (
	"log/slog"
	"time"

	"contest-reminder/pkg/config"
)

const defaultBaseURL = "https://clist.by/api/v2"

// Config holds the CLIST API settings.
type Config struct {
	// Username and APIKey form the "ApiKey user:key" authorization header.
	Username string
	APIKey   string

	// BaseURL is the API root, overridable for tests.
	BaseURL string

	// Resources are the CLIST resource names (host names) to ingest.
	Resources []string

	// Limit caps how many contests one fetch requests.
	Limit int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// Enabled reports whether credentials are present. Without them ingestion
// is skipped rather than failing every run.
func (c Config) Enabled() bool {
	return c.Username != "" && c.APIKey != ""
}

// LoadConfig reads the CLIST settings from the environment. Missing
// credentials disable ingestion with a warning instead of an error.
func LoadConfig() Config {
	cfg := Config{
		Username:  config.GetEnvString("CLIST_USERNAME", ""),
		APIKey:    config.GetEnvString("CLIST_API_KEY", ""),
		BaseURL:   config.GetEnvString("CLIST_BASE_URL", defaultBaseURL),
		Resources: config.GetEnvStringList("CLIST_RESOURCES", []string{"codeforces.com", "codechef.com", "leetcode.com"}),
		Limit:     config.GetEnvInt("CLIST_FETCH_LIMIT", 50),
		Timeout:   config.GetEnvDuration("CLIST_TIMEOUT", 15*time.Second),
	}

	if !cfg.Enabled() {
		slog.Warn("CLIST credentials not configured, contest ingestion disabled")
	}

	return cfg
}
