package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
)

const (
	// EOW is the reserved end-of-word symbol. It never appears inside a
	// normalized word.
	EOW rune = 0
	// EOWText is the textual form of EOW used by the store and JSON exports.
	EOWText = "<EOW>"
)

var (
	// ErrEmptyLexicon is returned when there are no training words to build from.
	ErrEmptyLexicon = errors.New("markov: empty lexicon")
	// ErrDegenerateOrder is returned when the model order is not in
	// [1, len(shortest word)-1].
	ErrDegenerateOrder = errors.New("markov: degenerate order")
	// ErrInvalidConstraints is returned when sampling constraints are inconsistent.
	ErrInvalidConstraints = errors.New("markov: invalid constraints")
	// ErrExhausted is returned when no acceptable word was sampled within the
	// configured attempt limit.
	ErrExhausted = errors.New("markov: sampling attempts exhausted")
)

// Constraints bound the words a Sampler may emit.
type Constraints struct {
	// MinLength and MaxLength bound the word length in runes.
	MinLength int
	MaxLength int
	// AllowDuplicates permits emitting a word this Sampler has already emitted.
	AllowDuplicates bool
	// ExcludeLexiconWords rejects words that are verbatim training words.
	ExcludeLexiconWords bool
}

// Validate reports whether the constraints are usable.
func (c Constraints) Validate() error {
	if c.MinLength < 1 || c.MaxLength < 1 {
		return fmt.Errorf("%w: lengths must be positive (min %d, max %d)", ErrInvalidConstraints, c.MinLength, c.MaxLength)
	}
	if c.MinLength > c.MaxLength {
		return fmt.Errorf("%w: min length %d exceeds max length %d", ErrInvalidConstraints, c.MinLength, c.MaxLength)
	}
	return nil
}

// Sampler draws words from a Table. It holds the random source and, when
// duplicates are disallowed, every word it has emitted so far.
type Sampler struct {
	table       *Table
	constraints Constraints
	options     *generateOptions
	rng         *rand.Rand
	seen        map[string]struct{}
	logger      *slog.Logger
}

// NewSampler creates a Sampler over table. It fails with ErrDegenerateOrder
// when the table was not produced by Build, Load or Import, and with
// ErrInvalidConstraints when the constraints are inconsistent.
func NewSampler(table *Table, constraints Constraints, opts ...GenerateOption) (*Sampler, error) {
	if table == nil || table.order < 1 || len(table.starts) == 0 {
		return nil, ErrDegenerateOrder
	}
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}

	rng := options.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Sampler{
		table:       table,
		constraints: constraints,
		options:     options,
		rng:         rng,
		seen:        make(map[string]struct{}),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Sampler. By default, all logs are discarded.
func (s *Sampler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Emitted returns how many distinct words the Sampler has remembered. It is
// always zero when duplicates are allowed.
func (s *Sampler) Emitted() int {
	return len(s.seen)
}
