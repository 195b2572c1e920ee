package markov

import (
	"errors"
	"testing"
)

func TestBuild(t *testing.T) {
	table := buildTestTable(t, 1, "cat")

	if table.Order() != 1 {
		t.Errorf("Order() got = %d, want 1", table.Order())
	}

	starts := table.Starts()
	if len(starts) != 1 || starts[0].Context != "c" || starts[0].Freq != 1 {
		t.Errorf("Starts() got = %+v, want [{c 1}]", starts)
	}

	expected := map[string]rune{"c": 'a', "a": 't', "t": EOW}
	for context, next := range expected {
		choices, total := table.NextTokens(context)
		if len(choices) != 1 || choices[0].Next != next || total != 1 {
			t.Errorf("NextTokens(%q) got = %+v (total %d), want single %q", context, choices, total, TokenText(next))
		}
	}

	if !table.HasWord("cat") || table.HasWord("ca") {
		t.Error("HasWord() does not reflect the training words")
	}
}

func TestBuildFrequencies(t *testing.T) {
	table := buildTestTable(t, 2, "abab", "abc")

	starts := table.Starts()
	if len(starts) != 1 || starts[0].Context != "ab" || starts[0].Freq != 2 {
		t.Fatalf("Starts() got = %+v, want [{ab 2}]", starts)
	}

	choices, total := table.NextTokens("ab")
	// "abab": ab->a, ab->EOW. "abc": ab->c.
	if total != 3 || len(choices) != 3 {
		t.Fatalf("NextTokens(ab) got = %+v (total %d), want 3 choices", choices, total)
	}
	for _, choice := range choices {
		if choice.Freq != 1 {
			t.Errorf("unexpected frequency for %q: %d", TokenText(choice.Next), choice.Freq)
		}
	}
}

func TestBuildEveryContextReachesEOW(t *testing.T) {
	table := buildTestTable(t, 2, testWords...)

	// Every word's final context must be able to end the word.
	for _, word := range testWords {
		r := []rune(word)
		context := string(r[len(r)-2:])
		choices, _ := table.NextTokens(context)
		found := false
		for _, choice := range choices {
			if choice.Next == EOW {
				found = true
			}
		}
		if !found {
			t.Errorf("context %q of %q has no EOW transition", context, word)
		}
	}

	// Every start context must continue.
	for _, start := range table.Starts() {
		choices, _ := table.NextTokens(start.Context)
		if len(choices) == 0 {
			t.Errorf("start context %q has no transitions", start.Context)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	lex, err := NewLexicon([]string{"cat", "horse"})
	if err != nil {
		t.Fatalf("NewLexicon() error = %v", err)
	}

	testCases := []struct {
		name  string
		lex   *Lexicon
		order int
		err   error
	}{
		{"Nil lexicon", nil, 1, ErrEmptyLexicon},
		{"Zero order", lex, 0, ErrDegenerateOrder},
		{"Negative order", lex, -1, ErrDegenerateOrder},
		{"Order equals shortest word", lex, 3, ErrDegenerateOrder},
		{"Largest valid order", lex, 2, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.lex, tc.order)
			if !errors.Is(err, tc.err) {
				t.Errorf("Build() error = %v, want %v", err, tc.err)
			}
		})
	}
}

func BenchmarkBuild(b *testing.B) {
	lex, err := NewLexicon(createBenchmarkWords())
	if err != nil {
		b.Fatalf("NewLexicon() error = %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(lex, 3); err != nil {
			b.Fatalf("Build() error = %v", err)
		}
	}
}
