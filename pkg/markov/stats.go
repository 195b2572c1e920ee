package markov

import (
	"unicode/utf8"

	"github.com/montanaflynn/stats"
)

// TableStats holds aggregated statistics for a single Table.
type TableStats struct {
	Order            int     // The number of runes of context
	Contexts         int     // The number of distinct contexts
	Transitions      int     // The number of unique context->next links
	TotalFrequency   int     // The sum of all link frequencies
	StartingContexts int     // The number of distinct contexts that begin a word
	Words            int     // The number of distinct training words
	MeanWordLength   float64 // Mean rune length of the distinct training words
	MedianWordLength float64 // Median rune length of the distinct training words
}

// Stats returns a snapshot of statistics for the table.
func (t *Table) Stats() TableStats {
	s := TableStats{
		Order:            t.order,
		Contexts:         len(t.chains),
		StartingContexts: len(t.starts),
		Words:            len(t.words),
	}
	for _, c := range t.chains {
		s.Transitions += len(c.choices)
		s.TotalFrequency += c.total
	}

	lengths := make([]int, 0, len(t.words))
	for word := range t.words {
		lengths = append(lengths, utf8.RuneCountInString(word))
	}
	if len(lengths) > 0 {
		data := stats.LoadRawData(lengths)
		s.MeanWordLength, _ = data.Mean()
		s.MedianWordLength, _ = data.Median()
	}
	return s
}
