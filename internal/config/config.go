package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DefaultMaxImageBytes is the product default image size ceiling (10 MB).
const DefaultMaxImageBytes = 10 * 1024 * 1024

// Config holds application configuration.
type Config struct {
	// MaxImageBytes is the maximum accepted size of an uploaded image.
	MaxImageBytes int64 `json:"max_image_bytes"`

	// RecognitionURL is the base URL of the recognition service.
	// Empty means identification is unavailable (journal-only mode).
	RecognitionURL string `json:"recognition_url,omitempty"`

	// RecognitionTimeoutSecs bounds a single recognition call.
	RecognitionTimeoutSecs int `json:"recognition_timeout_secs,omitempty"`

	// RecentCount is the number of entries shown in the "Recent" view.
	RecentCount int `json:"recent_count,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are ignored with a warning.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxImageBytes:          DefaultMaxImageBytes,
		RecognitionTimeoutSecs: 15,
		RecentCount:            3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.histofy.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; slices are appended and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MaxImageBytes = overlay.MaxImageBytes
	if result.MaxImageBytes == 0 {
		result.MaxImageBytes = base.MaxImageBytes
	}

	result.RecognitionURL = overlay.RecognitionURL
	if result.RecognitionURL == "" {
		result.RecognitionURL = base.RecognitionURL
	}

	result.RecognitionTimeoutSecs = overlay.RecognitionTimeoutSecs
	if result.RecognitionTimeoutSecs == 0 {
		result.RecognitionTimeoutSecs = base.RecognitionTimeoutSecs
	}

	result.RecentCount = overlay.RecentCount
	if result.RecentCount == 0 {
		result.RecentCount = base.RecentCount
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices and removes duplicates and empties.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
