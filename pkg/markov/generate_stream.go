package markov

import (
	"context"
	"errors"
	"log/slog"
)

// Stream returns a read-only channel carrying an endless sequence of words
// from Next. The channel is closed once the context is cancelled or sampling
// is exhausted. The Sampler must not be used by anyone else while the stream
// is running.
func (s *Sampler) Stream(ctx context.Context) <-chan string {
	words := make(chan string)

	go func() {
		defer close(words)

		for {
			word, err := s.Next(ctx)
			if err != nil {
				if errors.Is(err, ErrExhausted) {
					s.logger.ErrorContext(ctx, "Sample stream exhausted", slog.Any("error", err))
				} else {
					s.logger.DebugContext(ctx, "Sample stream cancelled by context")
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case words <- word:
			}
		}
	}()

	return words
}
