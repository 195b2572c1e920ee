package discovery

import "context"

// Stream runs the loop in a new goroutine and delivers its events on the
// returned channel, which is closed when the run ends. The returned function
// blocks until then and returns Run's error. Callers must keep draining the
// channel or cancel ctx.
func (l *Loop) Stream(ctx context.Context) (<-chan Event, func() error) {
	events := make(chan Event)
	done := make(chan struct{})
	var runErr error

	go func() {
		defer close(done)
		defer close(events)

		runErr = l.Run(ctx, SinkFunc(func(ctx context.Context, event Event) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case events <- event:
				return nil
			}
		}))
	}()

	return events, func() error {
		<-done
		return runErr
	}
}
