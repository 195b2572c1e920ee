package markov

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"unicode/utf8"
)

// generateOptions holds the tunables shared by Next and Stream.
type generateOptions struct {
	maxAttempts int
	temperature float64
	topK        int
	rng         *rand.Rand
}

func defaultGenerateOptions() *generateOptions {
	return &generateOptions{
		maxAttempts: 1000,
		temperature: 1.0,
		topK:        0,
	}
}

// GenerateOption is a function that configures a Sampler.
type GenerateOption func(*generateOptions)

// WithMaxAttempts caps how many raw samples a single Next call may discard
// before giving up with ErrExhausted. A value of 0 removes the cap.
// Default: 1000
func WithMaxAttempts(n int) GenerateOption {
	return func(o *generateOptions) { o.maxAttempts = n }
}

// WithTemperature adjusts the randomness of the rune selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 flatten the distribution, values < 1.0 sharpen it.
// A value of 0 or less always picks the most frequent rune.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the selection pool to the k most frequent runes at each
// step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// WithSeed makes the Sampler deterministic.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// Next returns the next acceptable word. Raw samples shorter than MinLength,
// verbatim training words (with ExcludeLexiconWords) and repeats (without
// AllowDuplicates) are discarded and sampling restarts from scratch. After
// the configured number of attempts it returns ErrExhausted.
func (s *Sampler) Next(ctx context.Context) (string, error) {
	for attempt := 1; s.options.maxAttempts <= 0 || attempt <= s.options.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		word := s.sampleOnce(ctx)

		if utf8.RuneCountInString(word) < s.constraints.MinLength {
			continue
		}
		if s.constraints.ExcludeLexiconWords && s.table.HasWord(word) {
			continue
		}
		if !s.constraints.AllowDuplicates {
			if _, dup := s.seen[word]; dup {
				continue
			}
			s.seen[word] = struct{}{}
		}

		return word, nil
	}

	s.logger.WarnContext(ctx, "Sampling gave up",
		slog.Int("max_attempts", s.options.maxAttempts),
		slog.Int("min_length", s.constraints.MinLength),
		slog.Int("max_length", s.constraints.MaxLength),
	)
	return "", fmt.Errorf("%w: no acceptable word after %d attempts", ErrExhausted, s.options.maxAttempts)
}

// sampleOnce walks the chain from a random start context until EOW or
// MaxLength. A start context longer than MaxLength is truncated.
func (s *Sampler) sampleOnce(ctx context.Context) string {
	t := s.table
	word := []rune(pickStart(s.rng, t.starts, t.startTotal))
	if len(word) >= s.constraints.MaxLength {
		return string(word[:s.constraints.MaxLength])
	}

	for len(word) < s.constraints.MaxLength {
		key := string(word[len(word)-t.order:])
		c, ok := t.chains[key]
		if !ok { // Dead end in chain
			s.logger.DebugContext(ctx, "Generation terminated due to dead-end",
				slog.String("last_context", key),
				slog.Int("generated_length", len(word)),
			)
			break
		}

		next := chooseNextToken(s.rng, c.choices, c.total, s.options)
		if next == EOW {
			break
		}
		word = append(word, next)
	}
	return string(word)
}

// pickStart chooses a start context weighted by how many words began with it.
func pickStart(rng *rand.Rand, starts []StartContext, total int) string {
	randChoice := rng.IntN(total)
	for _, start := range starts {
		randChoice -= start.Freq
		if randChoice < 0 {
			return start.Context
		}
	}
	return starts[len(starts)-1].Context
}

// chooseNextToken abstracts the rune selection logic from the generation loop.
// choices belongs to the Table and must not be modified.
func chooseNextToken(rng *rand.Rand, choices []Transition, totalFreq int, options *generateOptions) rune {
	var nextToken rune

	// topK filtering
	if options.topK > 0 && options.topK < len(choices) {
		choices = slices.Clone(choices)
		slices.SortStableFunc(choices, func(a, b Transition) int {
			return b.Freq - a.Freq
		})
		choices = choices[:options.topK]
		totalFreq = 0
		for _, choice := range choices {
			totalFreq += choice.Freq
		}
	}

	// temperature selection
	if options.temperature <= 0 { // Deterministic
		maxFreq := -1
		for _, choice := range choices {
			if choice.Freq > maxFreq {
				maxFreq = choice.Freq
				nextToken = choice.Next
			}
		}
	} else if options.temperature == 1.0 { // Standard weighted random
		randChoice := rng.IntN(totalFreq)
		for _, choice := range choices {
			randChoice -= choice.Freq
			if randChoice < 0 {
				nextToken = choice.Next
				break
			}
		}
	} else { // Temperature-based sampling
		logProbabilities := make([]float64, len(choices))
		epsilon := -1e9
		for i, choice := range choices {
			lp := math.Log(float64(choice.Freq)) / options.temperature
			logProbabilities[i] = lp
			if lp > epsilon {
				epsilon = lp
			}
		}
		var totalWeight float64
		weights := make([]float64, len(choices))
		for i, lp := range logProbabilities {
			w := math.Exp(lp - epsilon)
			weights[i] = w
			totalWeight += w
		}
		randChoice := rng.Float64() * totalWeight
		nextToken = choices[len(choices)-1].Next
		for i, choice := range choices {
			randChoice -= weights[i]
			if randChoice < 0 {
				nextToken = choice.Next
				break
			}
		}
	}
	return nextToken
}
