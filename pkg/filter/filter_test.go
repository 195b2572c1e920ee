package filter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/namehunt/pkg/filter"
)

func TestNewCandidate(t *testing.T) {
	c := filter.NewCandidate("zorb", "get", "stack")
	assert.Equal(t, "zorb", c.Stem)
	assert.Equal(t, "getzorbstack", c.Name)
}

// vowels is a predictable counter for exercising the bounds themselves.
func vowels(word string) int {
	return strings.Count(word, "a") + strings.Count(word, "e") + strings.Count(word, "i") +
		strings.Count(word, "o") + strings.Count(word, "u")
}

func TestFilter_Check(t *testing.T) {
	f := filter.New(3, 5, 4, filter.WithSyllableCounter(vowels))

	tests := []struct {
		name       string
		stem       string
		suffix     string
		wantReason filter.Reason
	}{
		{name: "accepted", stem: "zorb", suffix: "stack"},
		{name: "shortest accepted", stem: "zor", suffix: "stack"},
		{name: "longest accepted", stem: "zorbi", suffix: "stack"},
		{name: "too short", stem: "zo", suffix: "stack", wantReason: filter.ReasonTooShort},
		{name: "too long", stem: "zorbix", suffix: "stack", wantReason: filter.ReasonTooLong},
		{name: "affix not counted in length", stem: "abc", suffix: "stackstack"},
		{name: "too many syllables", stem: "aeiou", suffix: "banana", wantReason: filter.ReasonTooManySyllables},
		{name: "syllables measured on full name", stem: "tab", suffix: "banana", wantReason: filter.ReasonTooManySyllables},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := filter.NewCandidate(tt.stem, "", tt.suffix)
			err := f.Check(c)

			if tt.wantReason == "" {
				assert.NoError(t, err)
				assert.True(t, f.Accept(c))
				return
			}

			var rejection *filter.RejectionError
			require.True(t, errors.As(err, &rejection), "expected a RejectionError, got %v", err)
			assert.Equal(t, tt.wantReason, rejection.Reason)
			assert.False(t, f.Accept(c))
		})
	}
}

func TestFilter_DefaultCounter(t *testing.T) {
	f := filter.New(3, 5, 4)

	for _, name := range [][2]string{{"templ", "ate"}, {"uni", "corn"}, {"hoop", "ty"}} {
		assert.True(t, f.Accept(filter.NewCandidate(name[0], "", name[1])), name[0]+name[1])
	}
	for _, stem := range []string{"riota", "reali", "naiad", "bioa"} {
		err := f.Check(filter.NewCandidate(stem, "", "stack"))
		var rejection *filter.RejectionError
		require.True(t, errors.As(err, &rejection), stem)
		assert.Equal(t, filter.ReasonTooManySyllables, rejection.Reason, stem)
		assert.Equal(t, 4, rejection.Value, stem)
	}
}

func TestFilter_LengthCountsRunes(t *testing.T) {
	f := filter.New(3, 3, 0)
	assert.True(t, f.Accept(filter.NewCandidate("äöü", "", "")))
}

func TestFilter_SyllableCheckDisabled(t *testing.T) {
	f := filter.New(1, 10, 0)
	assert.True(t, f.Accept(filter.NewCandidate("aeiouaeiou", "", "banana")))
}

func TestFilter_CustomCounter(t *testing.T) {
	calls := 0
	f := filter.New(1, 10, 2, filter.WithSyllableCounter(func(word string) int {
		calls++
		return len(word)
	}))

	assert.True(t, f.Accept(filter.NewCandidate("a", "", "")))
	assert.False(t, f.Accept(filter.NewCandidate("ab", "", "")))
	assert.Equal(t, 2, calls)
}

func TestFilter_Pure(t *testing.T) {
	f := filter.New(3, 5, 4)
	c := filter.NewCandidate("zorb", "", "stack")
	first := f.Check(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Check(c))
	}
}
