package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/namehunt/pkg/discovery"
)

// envPrefix is prepended to every environment override, e.g. NAMEHUNT_MAX_LENGTH.
const envPrefix = "NAMEHUNT_"

// AppConfig holds process-level settings.
type AppConfig struct {
	LogLevel     string `json:"log_level" env:"LOG_LEVEL"`
	DataDir      string `json:"data_dir" env:"DATA_DIR"`
	DatabasePath string `json:"database_path" env:"DATABASE_PATH"`
	// WordListPath is a file with one training word per line. Empty uses the
	// built-in list.
	WordListPath string `json:"word_list_path" env:"WORD_LIST"`
	// ModelName is the stored model hunt uses. It is trained from the word
	// list and saved on first use.
	ModelName string `json:"model_name" env:"MODEL"`
	// RecordResults stores every domain checked by hunt in the ledger,
	// whether or not it is printed.
	RecordResults bool `json:"record_results" env:"RECORD_RESULTS"`
}

// HuntConfig holds the discovery settings. Durations are in milliseconds.
type HuntConfig struct {
	Order               int     `json:"order" env:"ORDER"`
	MinLength           int     `json:"min_length" env:"MIN_LENGTH"`
	MaxLength           int     `json:"max_length" env:"MAX_LENGTH"`
	AllowDuplicates     bool    `json:"allow_duplicates" env:"ALLOW_DUPLICATES"`
	ExcludeLexiconWords bool    `json:"exclude_lexicon_words" env:"EXCLUDE_LEXICON_WORDS"`
	MaxSyllables        int     `json:"max_syllables" env:"MAX_SYLLABLES"`
	Prefix              string  `json:"prefix" env:"PREFIX"`
	Suffix              string  `json:"suffix" env:"SUFFIX"`
	TLD                 string  `json:"tld" env:"TLD"`
	WaitTimeMs          int     `json:"wait_time_ms" env:"WAIT_TIME_MS"`
	PenaltyMs           int     `json:"penalty_ms" env:"PENALTY_MS"`
	LookupTimeoutMs     int     `json:"lookup_timeout_ms" env:"LOOKUP_TIMEOUT_MS"`
	ShowRejected        bool    `json:"show_rejected" env:"SHOW_REJECTED"`
	DebugTrace          bool    `json:"debug_trace" env:"DEBUG_TRACE"`
	MaxAttempts         int     `json:"max_attempts" env:"MAX_ATTEMPTS"`
	MaxRejections       int     `json:"max_rejections" env:"MAX_REJECTIONS"`
	Temperature         float64 `json:"temperature" env:"TEMPERATURE"`
	// WhoisServer overrides the registry server for TLD, as host or host:port.
	WhoisServer string `json:"whois_server" env:"WHOIS_SERVER"`
	// WhoisQuery is the query format sent to WhoisServer, with %s for the domain.
	WhoisQuery string `json:"whois_query" env:"WHOIS_QUERY"`
	// WhoisDiscovery looks up the registry of a TLD without a known server
	// in the IANA root zone database.
	WhoisDiscovery bool `json:"whois_discovery" env:"WHOIS_DISCOVERY"`
}

// Config is the top-level configuration struct.
type Config struct {
	App  AppConfig  `json:"app_config"`
	Hunt HuntConfig `json:"hunt_config"`
}

// DefaultAppConfig creates an app configuration with default values.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		LogLevel:      "info",
		DataDir:       "./data",
		DatabasePath:  "./data/namehunt.db?_journal_mode=WAL&_busy_timeout=5000",
		ModelName:     "default",
		RecordResults: true,
	}
}

// DefaultHuntConfig mirrors discovery.DefaultConfig.
func DefaultHuntConfig() HuntConfig {
	d := discovery.DefaultConfig()
	return HuntConfig{
		Order:               d.Order,
		MinLength:           d.MinLength,
		MaxLength:           d.MaxLength,
		AllowDuplicates:     d.AllowDuplicates,
		ExcludeLexiconWords: d.ExcludeLexiconWords,
		MaxSyllables:        d.MaxSyllables,
		Prefix:              d.Prefix,
		Suffix:              d.Suffix,
		TLD:                 d.TLD,
		WaitTimeMs:          int(d.WaitTime / time.Millisecond),
		PenaltyMs:           int(d.Penalty / time.Millisecond),
		LookupTimeoutMs:     10000,
		ShowRejected:        d.ShowRejected,
		DebugTrace:          d.DebugTrace,
		MaxAttempts:         d.MaxAttempts,
		MaxRejections:       d.MaxRejections,
		Temperature:         1.0,
		WhoisDiscovery:      true,
	}
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		App:  DefaultAppConfig(),
		Hunt: DefaultHuntConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path and
// applies NAMEHUNT_* environment overrides on top. If the file doesn't exist,
// it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// The defaults are still usable.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err = config.Discovery().Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDotEnv loads variables from a .env file in the working directory, if
// there is one. Variables already set in the environment win.
func loadDotEnv() {
	// Ignore errors - the .env file might not exist and that's ok
	_ = godotenv.Load()
}

// Discovery converts the hunt settings into a discovery.Config.
func (c *Config) Discovery() discovery.Config {
	h := c.Hunt
	return discovery.Config{
		Order:               h.Order,
		MinLength:           h.MinLength,
		MaxLength:           h.MaxLength,
		AllowDuplicates:     h.AllowDuplicates,
		ExcludeLexiconWords: h.ExcludeLexiconWords,
		MaxSyllables:        h.MaxSyllables,
		Prefix:              h.Prefix,
		Suffix:              h.Suffix,
		TLD:                 h.TLD,
		WaitTime:            time.Duration(h.WaitTimeMs) * time.Millisecond,
		Penalty:             time.Duration(h.PenaltyMs) * time.Millisecond,
		ShowRejected:        h.ShowRejected,
		DebugTrace:          h.DebugTrace,
		MaxAttempts:         h.MaxAttempts,
		MaxRejections:       h.MaxRejections,
	}
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
