package markov

import (
	"context"
	"testing"
	"time"
)

func TestStream(t *testing.T) {
	table := buildTestTable(t, 2, testWords...)

	t.Run("Successful stream", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := NewSampler(table, Constraints{MinLength: 3, MaxLength: 6}, WithSeed(3))
		if err != nil {
			t.Fatalf("NewSampler() error = %v", err)
		}

		stream := s.Stream(ctx)
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			word, ok := <-stream
			if !ok {
				t.Fatalf("stream closed after %d words", i)
			}
			if seen[word] {
				t.Errorf("stream repeated %q", word)
			}
			seen[word] = true
		}
	})

	t.Run("Stream closes when exhausted", func(t *testing.T) {
		catTable := buildTestTable(t, 1, "cat")
		s, err := NewSampler(catTable, Constraints{MinLength: 1, MaxLength: 3}, WithMaxAttempts(10))
		if err != nil {
			t.Fatalf("NewSampler() error = %v", err)
		}

		var words []string
		for word := range s.Stream(context.Background()) {
			words = append(words, word)
		}
		if len(words) != 1 || words[0] != "cat" {
			t.Errorf("stream got = %q, want [cat]", words)
		}
	})

	t.Run("Stream cancellation", func(t *testing.T) {
		ctxCancel, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := NewSampler(table, Constraints{MinLength: 3, MaxLength: 6, AllowDuplicates: true})
		if err != nil {
			t.Fatalf("NewSampler() error = %v", err)
		}
		stream := s.Stream(ctxCancel)

		// Read one word, then cancel
		<-stream
		cancel()

		// The channel should now close quickly
		timeout := time.After(100 * time.Millisecond)
		for {
			select {
			case _, ok := <-stream:
				if !ok {
					return
				}
			case <-timeout:
				t.Fatal("timed out waiting for stream channel to close after cancellation")
			}
		}
	})
}
