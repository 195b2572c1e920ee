package markov

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Transition is one possible next rune after a context, with the number of
// times it was observed in training. Next is EOW when the context ended a word.
type Transition struct {
	Next rune
	Freq int
}

// StartContext is a context that began at least one training word.
type StartContext struct {
	Context string
	Freq    int
}

// chain is the distribution of next runes for a single context.
type chain struct {
	choices []Transition
	total   int
}

// Table is a read-only order-k transition table. The zero value is not usable;
// obtain one from Build, Store.LoadModel or ReadJSON.
type Table struct {
	order      int
	chains     map[string]*chain
	starts     []StartContext
	startTotal int
	words      map[string]struct{}
}

// newTable freezes raw counts into a Table. Choices are sorted so that a
// seeded Sampler is reproducible regardless of map iteration order.
func newTable(order int, starts map[string]int, chains map[string]map[rune]int, words map[string]struct{}) *Table {
	t := &Table{
		order:  order,
		chains: make(map[string]*chain, len(chains)),
		words:  words,
	}
	if t.words == nil {
		t.words = make(map[string]struct{})
	}

	for context, next := range chains {
		c := &chain{choices: make([]Transition, 0, len(next))}
		for r, freq := range next {
			if freq <= 0 {
				continue
			}
			c.choices = append(c.choices, Transition{Next: r, Freq: freq})
			c.total += freq
		}
		if len(c.choices) == 0 {
			continue
		}
		slices.SortFunc(c.choices, func(a, b Transition) int { return int(a.Next) - int(b.Next) })
		t.chains[context] = c
	}

	for context, freq := range starts {
		if freq <= 0 {
			continue
		}
		t.starts = append(t.starts, StartContext{Context: context, Freq: freq})
		t.startTotal += freq
	}
	slices.SortFunc(t.starts, func(a, b StartContext) int { return strings.Compare(a.Context, b.Context) })

	return t
}

// Order returns the number of preceding runes used as context.
func (t *Table) Order() int {
	return t.order
}

// NextTokens returns all possible next runes for a context together with the
// sum of their frequencies. An unknown context yields a nil slice and 0.
func (t *Table) NextTokens(context string) ([]Transition, int) {
	c, ok := t.chains[context]
	if !ok {
		return nil, 0
	}
	return slices.Clone(c.choices), c.total
}

// Starts returns the weighted start contexts.
func (t *Table) Starts() []StartContext {
	return slices.Clone(t.starts)
}

// HasWord reports whether word was one of the training words.
func (t *Table) HasWord(word string) bool {
	_, ok := t.words[word]
	return ok
}

// TokenText returns the textual form of a rune as used in exports.
func TokenText(r rune) string {
	if r == EOW {
		return EOWText
	}
	return string(r)
}

// ParseToken is the inverse of TokenText. It reports false for text that is
// neither EOWText nor a single rune.
func ParseToken(text string) (rune, bool) {
	if text == EOWText {
		return EOW, true
	}
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || size != len(text) || r == EOW {
		return 0, false
	}
	return r, true
}
