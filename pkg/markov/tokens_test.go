package markov

import "testing"

func TestTokenText(t *testing.T) {
	testCases := []struct {
		r    rune
		text string
	}{
		{EOW, EOWText},
		{'a', "a"},
		{'é', "é"},
	}
	for _, tc := range testCases {
		if got := TokenText(tc.r); got != tc.text {
			t.Errorf("TokenText(%q) got = %q, want %q", tc.r, got, tc.text)
		}
		r, ok := ParseToken(tc.text)
		if !ok || r != tc.r {
			t.Errorf("ParseToken(%q) got = %q, %v, want %q", tc.text, r, ok, tc.r)
		}
	}
}

func TestParseTokenInvalid(t *testing.T) {
	for _, text := range []string{"", "ab", "<eow>", "\x00", "\xff"} {
		if _, ok := ParseToken(text); ok {
			t.Errorf("ParseToken(%q) should fail", text)
		}
	}
}

func TestNextTokensIsCopy(t *testing.T) {
	table := buildTestTable(t, 1, "cat")

	choices, _ := table.NextTokens("c")
	choices[0].Freq = 99
	again, _ := table.NextTokens("c")
	if again[0].Freq != 1 {
		t.Error("modifying the result of NextTokens() changed the table")
	}

	if choices, total := table.NextTokens("zz"); choices != nil || total != 0 {
		t.Errorf("NextTokens(unknown) got = %+v, %d, want nil, 0", choices, total)
	}
}

func TestStats(t *testing.T) {
	table := buildTestTable(t, 1, "cat", "cart", "carton")
	stats := table.Stats()

	if stats.Order != 1 {
		t.Errorf("Order got = %d, want 1", stats.Order)
	}
	if stats.Words != 3 {
		t.Errorf("Words got = %d, want 3", stats.Words)
	}
	if stats.StartingContexts != 1 {
		t.Errorf("StartingContexts got = %d, want 1", stats.StartingContexts)
	}
	// c a t r o n
	if stats.Contexts != 6 {
		t.Errorf("Contexts got = %d, want 6", stats.Contexts)
	}
	// 3 + 4 + 6 runes, one transition per rune.
	if stats.TotalFrequency != 13 {
		t.Errorf("TotalFrequency got = %d, want 13", stats.TotalFrequency)
	}
	if stats.MeanWordLength != 13.0/3.0 {
		t.Errorf("MeanWordLength got = %v, want %v", stats.MeanWordLength, 13.0/3.0)
	}
	if stats.MedianWordLength != 4 {
		t.Errorf("MedianWordLength got = %v, want 4", stats.MedianWordLength)
	}
}
