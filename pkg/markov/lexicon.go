package markov

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultAlphabet is the set of runes kept by a Lexicon unless WithAlphabet
// overrides it.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Lexicon is an ordered, immutable list of normalized training words.
type Lexicon struct {
	words    []string
	set      map[string]struct{}
	shortest int
}

type lexiconOptions struct {
	alphabet      string
	minWordLength int
}

// LexiconOption configures word normalization.
type LexiconOption func(*lexiconOptions)

// WithAlphabet sets the runes a normalized word may contain. Everything else
// is dropped after lowercasing and diacritic removal.
// Default: DefaultAlphabet
func WithAlphabet(alphabet string) LexiconOption {
	return func(o *lexiconOptions) { o.alphabet = alphabet }
}

// WithMinWordLength drops normalized words shorter than n runes. Dictionaries
// usually contain one-letter words, which would otherwise cap the usable order at 0.
// Default: 1
func WithMinWordLength(n int) LexiconOption {
	return func(o *lexiconOptions) { o.minWordLength = n }
}

// NewLexicon normalizes words into a Lexicon. Each word is lowercased, has its
// diacritics stripped ("café" becomes "cafe") and loses any rune outside the
// alphabet. Words left empty or too short are skipped; order and duplicates
// are otherwise preserved. It returns ErrEmptyLexicon if nothing survives.
func NewLexicon(words []string, opts ...LexiconOption) (*Lexicon, error) {
	options := &lexiconOptions{
		alphabet:      DefaultAlphabet,
		minWordLength: 1,
	}
	for _, opt := range opts {
		opt(options)
	}

	allowed := make(map[rune]struct{}, len(options.alphabet))
	for _, r := range options.alphabet {
		allowed[r] = struct{}{}
	}

	// NFD splits accented letters into base + combining mark, the marks are
	// removed and the rest is recomposed.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := cases.Lower(language.Und)

	lex := &Lexicon{set: make(map[string]struct{})}
	var sb strings.Builder
	for _, word := range words {
		stripped, _, err := transform.String(stripper, word)
		if err != nil {
			stripped = word
		}
		sb.Reset()
		for _, r := range lower.String(stripped) {
			if _, ok := allowed[r]; ok {
				sb.WriteRune(r)
			}
		}
		normalized := sb.String()
		n := utf8.RuneCountInString(normalized)
		if n == 0 || n < options.minWordLength {
			continue
		}
		lex.words = append(lex.words, normalized)
		lex.set[normalized] = struct{}{}
		if lex.shortest == 0 || n < lex.shortest {
			lex.shortest = n
		}
	}

	if len(lex.words) == 0 {
		return nil, ErrEmptyLexicon
	}
	return lex, nil
}

// ReadLexicon reads one word per line from r and normalizes them with
// NewLexicon. Blank lines and lines starting with '#' are ignored.
func ReadLexicon(r io.Reader, opts ...LexiconOption) (*Lexicon, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read word list: %w", err)
	}
	return NewLexicon(words, opts...)
}

// Words returns a copy of the normalized words in their original order.
func (l *Lexicon) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Len returns the number of words, duplicates included.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Contains reports whether word is one of the normalized training words.
func (l *Lexicon) Contains(word string) bool {
	_, ok := l.set[word]
	return ok
}

// ShortestWord returns the rune length of the shortest word.
func (l *Lexicon) ShortestWord() int {
	return l.shortest
}
