package filter

import "github.com/mtso/syllables"

// SyllableCounter estimates the number of syllables in a word. Implementations
// must be total and case-insensitive.
type SyllableCounter func(word string) int

// Syllables is the default SyllableCounter. It counts with the rules of the
// wooorm/syllable English counter: known corner cases, prefix and suffix
// patterns, then vowel groups. Runes outside a-z are ignored, so a word without
// letters counts zero and any other word counts at least one.
func Syllables(word string) int {
	return syllables.In(word)
}
