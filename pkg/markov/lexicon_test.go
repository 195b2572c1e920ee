package markov

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestNewLexicon(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		opts     []LexiconOption
		expected []string
		shortest int
	}{
		{
			name:     "Lowercases and strips punctuation",
			input:    []string{"Hello!", "WORLD", "it's"},
			expected: []string{"hello", "world", "its"},
			shortest: 3,
		},
		{
			name:     "Removes diacritics",
			input:    []string{"café", "naïve", "Ångström"},
			expected: []string{"cafe", "naive", "angstrom"},
			shortest: 4,
		},
		{
			name:     "Drops words left empty",
			input:    []string{"123", "--", "ok"},
			expected: []string{"ok"},
			shortest: 2,
		},
		{
			name:     "Keeps duplicates and order",
			input:    []string{"beta", "alpha", "beta"},
			expected: []string{"beta", "alpha", "beta"},
			shortest: 4,
		},
		{
			name:     "Minimum word length",
			input:    []string{"a", "an", "ant", "antler"},
			opts:     []LexiconOption{WithMinWordLength(3)},
			expected: []string{"ant", "antler"},
			shortest: 3,
		},
		{
			name:     "Custom alphabet",
			input:    []string{"abc1", "x9y"},
			opts:     []LexiconOption{WithAlphabet("abcxy0123456789")},
			expected: []string{"abc1", "x9y"},
			shortest: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lex, err := NewLexicon(tc.input, tc.opts...)
			if err != nil {
				t.Fatalf("NewLexicon() error = %v", err)
			}
			if got := lex.Words(); !slices.Equal(got, tc.expected) {
				t.Errorf("Words() got = %q, want %q", got, tc.expected)
			}
			if lex.ShortestWord() != tc.shortest {
				t.Errorf("ShortestWord() got = %d, want %d", lex.ShortestWord(), tc.shortest)
			}
		})
	}
}

func TestNewLexiconEmpty(t *testing.T) {
	for _, input := range [][]string{nil, {}, {"", "42", "!!"}} {
		if _, err := NewLexicon(input); !errors.Is(err, ErrEmptyLexicon) {
			t.Errorf("NewLexicon(%q) error = %v, want ErrEmptyLexicon", input, err)
		}
	}
}

func TestReadLexicon(t *testing.T) {
	input := "# a comment\nalpha\n\n  Bravo  \n#another\ncharlie\n"
	lex, err := ReadLexicon(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLexicon() error = %v", err)
	}
	expected := []string{"alpha", "bravo", "charlie"}
	if got := lex.Words(); !slices.Equal(got, expected) {
		t.Errorf("Words() got = %q, want %q", got, expected)
	}
	if !lex.Contains("bravo") || lex.Contains("Bravo") {
		t.Error("Contains() should match normalized words only")
	}
}

func TestLexiconWordsIsCopy(t *testing.T) {
	lex, err := NewLexicon([]string{"alpha"})
	if err != nil {
		t.Fatalf("NewLexicon() error = %v", err)
	}
	words := lex.Words()
	words[0] = "mutated"
	if lex.Words()[0] != "alpha" {
		t.Error("modifying the result of Words() changed the lexicon")
	}
}
