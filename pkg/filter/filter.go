package filter

import (
	"fmt"
	"unicode/utf8"
)

// Reason identifies which check rejected a candidate.
type Reason string

const (
	ReasonTooShort         Reason = "too_short"
	ReasonTooLong          Reason = "too_long"
	ReasonTooManySyllables Reason = "too_many_syllables"
)

// Candidate is a generated stem together with the full name it forms once the
// configured prefix and suffix are applied.
type Candidate struct {
	Stem string
	Name string
}

// NewCandidate affixes stem with prefix and suffix.
func NewCandidate(stem, prefix, suffix string) Candidate {
	return Candidate{Stem: stem, Name: prefix + stem + suffix}
}

// RejectionError describes why a candidate did not pass the filter.
type RejectionError struct {
	Reason Reason
	Value  int // The measured value that failed
	Limit  int // The bound it was measured against
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("candidate rejected: %s (%d, limit %d)", e.Reason, e.Value, e.Limit)
}

// Filter applies the length and syllable bounds. The zero value rejects
// everything but empty stems; use New.
type Filter struct {
	minLength    int
	maxLength    int
	maxSyllables int
	syllables    SyllableCounter
}

// Option configures a Filter.
type Option func(*Filter)

// WithSyllableCounter replaces the default Syllables counter.
func WithSyllableCounter(counter SyllableCounter) Option {
	return func(f *Filter) {
		if counter != nil {
			f.syllables = counter
		}
	}
}

// New creates a Filter accepting stems of minLength to maxLength runes whose
// full name has fewer than maxSyllables syllables. A maxSyllables of 0 or less
// disables the syllable check.
func New(minLength, maxLength, maxSyllables int, opts ...Option) *Filter {
	f := &Filter{
		minLength:    minLength,
		maxLength:    maxLength,
		maxSyllables: maxSyllables,
		syllables:    Syllables,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Check returns nil if c passes every bound, or a *RejectionError naming the
// first bound it violates. Length is checked before syllables.
func (f *Filter) Check(c Candidate) error {
	n := utf8.RuneCountInString(c.Stem)
	if n < f.minLength {
		return &RejectionError{Reason: ReasonTooShort, Value: n, Limit: f.minLength}
	}
	if n > f.maxLength {
		return &RejectionError{Reason: ReasonTooLong, Value: n, Limit: f.maxLength}
	}
	if f.maxSyllables > 0 {
		if s := f.syllables(c.Name); s >= f.maxSyllables {
			return &RejectionError{Reason: ReasonTooManySyllables, Value: s, Limit: f.maxSyllables}
		}
	}
	return nil
}

// Accept reports whether c passes every bound.
func (f *Filter) Accept(c Candidate) bool {
	return f.Check(c) == nil
}
