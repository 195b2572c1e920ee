package discovery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CTAG07/namehunt/pkg/markov"
	"github.com/CTAG07/namehunt/pkg/whois"
)

var (
	// ErrInvalidConfig is returned by Config.Validate and New for unusable settings.
	ErrInvalidConfig = errors.New("discovery: invalid config")
	// ErrExhausted is returned by Run once no further candidate can be produced.
	ErrExhausted = errors.New("discovery: candidates exhausted")
)

// Config holds the settings of a single run. It is read once by New and never
// changes while the loop is running.
type Config struct {
	// Order is the Markov order used when a table is built for the run.
	Order int

	// MinLength and MaxLength bound the generated stem in runes. Affixes are
	// not counted.
	MinLength int
	MaxLength int
	// AllowDuplicates lets the same stem be generated more than once per run.
	AllowDuplicates bool
	// ExcludeLexiconWords rejects stems that are verbatim training words.
	ExcludeLexiconWords bool
	// MaxSyllables is an exclusive upper bound on the syllables of the full
	// name. 0 disables the check.
	MaxSyllables int

	Prefix string
	Suffix string
	TLD    string

	// WaitTime is the minimum delay between the starts of two lookups.
	WaitTime time.Duration
	// Penalty is how long probing stops after a rate-limited reply.
	Penalty time.Duration

	// ShowRejected reports filtered, taken, rate-limited and indeterminate
	// candidates as well as available ones.
	ShowRejected bool
	// DebugTrace reports rate-limited and indeterminate candidates and
	// attaches raw registry replies and errors to events.
	DebugTrace bool

	// MaxAttempts caps the resamples of a single generation. 0 is unbounded.
	MaxAttempts int
	// MaxRejections caps consecutive filter rejections. 0 is unbounded.
	MaxRejections int
}

// DefaultConfig returns the settings the hunt has always used: order 3,
// three to five letter stems with a "stack" suffix, fewer than four
// syllables, and a 100ms pause between .com lookups.
func DefaultConfig() Config {
	return Config{
		Order:           3,
		MinLength:       3,
		MaxLength:       5,
		AllowDuplicates: true,
		MaxSyllables:    4,
		Suffix:          "stack",
		TLD:             "com",
		WaitTime:        100 * time.Millisecond,
		Penalty:         10 * time.Second,
		MaxAttempts:     1000,
		MaxRejections:   10000,
	}
}

// Validate reports the first inconsistent setting, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Order < 1:
		return fmt.Errorf("%w: order must be at least 1, got %d", ErrInvalidConfig, c.Order)
	case c.MinLength < 1:
		return fmt.Errorf("%w: min length must be at least 1, got %d", ErrInvalidConfig, c.MinLength)
	case c.MaxLength < c.MinLength:
		return fmt.Errorf("%w: max length %d is below min length %d", ErrInvalidConfig, c.MaxLength, c.MinLength)
	case c.MaxSyllables < 0:
		return fmt.Errorf("%w: max syllables must not be negative, got %d", ErrInvalidConfig, c.MaxSyllables)
	case c.WaitTime < 0:
		return fmt.Errorf("%w: wait time must not be negative, got %s", ErrInvalidConfig, c.WaitTime)
	case c.Penalty < 0:
		return fmt.Errorf("%w: penalty must not be negative, got %s", ErrInvalidConfig, c.Penalty)
	case c.MaxAttempts < 0:
		return fmt.Errorf("%w: max attempts must not be negative, got %d", ErrInvalidConfig, c.MaxAttempts)
	case c.MaxRejections < 0:
		return fmt.Errorf("%w: max rejections must not be negative, got %d", ErrInvalidConfig, c.MaxRejections)
	case strings.TrimSpace(c.TLD) == "" || strings.ContainsAny(c.TLD, " \t\r\n/"):
		return fmt.Errorf("%w: invalid top-level domain %q", ErrInvalidConfig, c.TLD)
	}
	return nil
}

// Constraints returns the sampling constraints for the run.
func (c Config) Constraints() markov.Constraints {
	return markov.Constraints{
		MinLength:           c.MinLength,
		MaxLength:           c.MaxLength,
		AllowDuplicates:     c.AllowDuplicates,
		ExcludeLexiconWords: c.ExcludeLexiconWords,
	}
}

// ProberConfig returns the pacing settings for the run.
func (c Config) ProberConfig() whois.ProberConfig {
	return whois.ProberConfig{
		TLD:      c.TLD,
		WaitTime: c.WaitTime,
		Penalty:  c.Penalty,
	}
}
