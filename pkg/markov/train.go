package markov

import (
	"fmt"
)

// Build counts every order-length context in the lexicon and the rune that
// follows it, with EOW recorded after the last context of each word. The
// first order runes of every word become weighted start contexts.
//
// Build returns ErrEmptyLexicon for a nil or empty lexicon and
// ErrDegenerateOrder unless 1 <= order <= len(shortest word)-1, which
// guarantees every word contributes at least one non-terminal transition.
func Build(lexicon *Lexicon, order int) (*Table, error) {
	if lexicon.Len() == 0 {
		return nil, ErrEmptyLexicon
	}
	if order < 1 || order > lexicon.ShortestWord()-1 {
		return nil, fmt.Errorf("%w: order %d, shortest word has %d letters", ErrDegenerateOrder, order, lexicon.ShortestWord())
	}

	starts := make(map[string]int)
	chains := make(map[string]map[rune]int)
	words := make(map[string]struct{}, len(lexicon.set))

	for _, word := range lexicon.words {
		processWord([]rune(word), order, starts, chains)
		words[word] = struct{}{}
	}

	return newTable(order, starts, chains, words), nil
}

// processWord adds the transitions of a single word to the raw counts.
func processWord(word []rune, order int, starts map[string]int, chains map[string]map[rune]int) {
	starts[string(word[:order])]++

	for i := 0; i+order <= len(word); i++ { // Iterate one past the end to record EOW.
		context := string(word[i : i+order])
		next := EOW
		if i+order < len(word) {
			next = word[i+order]
		}
		links, ok := chains[context]
		if !ok {
			links = make(map[rune]int)
			chains[context] = links
		}
		links[next]++
	}
}
