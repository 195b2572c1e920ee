package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/CTAG07/namehunt/pkg/filter"
	"github.com/CTAG07/namehunt/pkg/markov"
	"github.com/CTAG07/namehunt/pkg/whois"
)

type loopOptions struct {
	runID           uuid.UUID
	sampleOpts      []markov.GenerateOption
	proberOpts      []whois.ProberOption
	syllableCounter filter.SyllableCounter
	recorder        Sink
}

// Option configures a Loop.
type Option func(*loopOptions)

// WithRunID overrides the random run ID.
func WithRunID(id uuid.UUID) Option {
	return func(o *loopOptions) { o.runID = id }
}

// WithSeed makes candidate generation deterministic.
func WithSeed(seed uint64) Option {
	return func(o *loopOptions) { o.sampleOpts = append(o.sampleOpts, markov.WithSeed(seed)) }
}

// WithSamplerOptions passes extra options, such as temperature, to the sampler.
func WithSamplerOptions(opts ...markov.GenerateOption) Option {
	return func(o *loopOptions) { o.sampleOpts = append(o.sampleOpts, opts...) }
}

// WithClassifier replaces the default registry reply classifier.
func WithClassifier(c whois.Classifier) Option {
	return func(o *loopOptions) { o.proberOpts = append(o.proberOpts, whois.WithClassifier(c)) }
}

// WithSyllableCounter replaces the default syllable counter.
func WithSyllableCounter(counter filter.SyllableCounter) Option {
	return func(o *loopOptions) { o.syllableCounter = counter }
}

// WithRecorder hands every candidate that reached the registry to recorder,
// whatever the reporting policy. Raw replies and causes are stripped.
func WithRecorder(recorder Sink) Option {
	return func(o *loopOptions) { o.recorder = recorder }
}

// Loop is a single discovery run. It is not reusable: call Run or Stream once.
type Loop struct {
	config  Config
	runID   uuid.UUID
	sampler *markov.Sampler
	filter  *filter.Filter
	prober   *whois.Prober
	recorder Sink
	state    atomic.Int32
	logger   *slog.Logger
}

// New builds a run over table, probing names through lookup. It fails with
// ErrInvalidConfig for inconsistent settings.
func New(table *markov.Table, lookup whois.Lookup, config Config, opts ...Option) (*Loop, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if lookup == nil {
		return nil, fmt.Errorf("%w: no registry lookup", ErrInvalidConfig)
	}

	options := &loopOptions{runID: uuid.New()}
	for _, opt := range opts {
		opt(options)
	}

	sampleOpts := append([]markov.GenerateOption{markov.WithMaxAttempts(config.MaxAttempts)}, options.sampleOpts...)
	sampler, err := markov.NewSampler(table, config.Constraints(), sampleOpts...)
	if err != nil {
		return nil, err
	}

	var filterOpts []filter.Option
	if options.syllableCounter != nil {
		filterOpts = append(filterOpts, filter.WithSyllableCounter(options.syllableCounter))
	}

	return &Loop{
		config:   config,
		runID:    options.runID,
		sampler:  sampler,
		filter:   filter.New(config.MinLength, config.MaxLength, config.MaxSyllables, filterOpts...),
		prober:   whois.NewProber(lookup, config.ProberConfig(), options.proberOpts...),
		recorder: options.recorder,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Loop and the sampler and prober it owns.
// By default, all logs are discarded.
func (l *Loop) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	l.logger = logger.With(slog.String("run_id", l.runID.String()))
	l.sampler.SetLogger(l.logger)
	l.prober.SetLogger(l.logger)
}

// RunID returns the ID stamped on every event of this run.
func (l *Loop) RunID() uuid.UUID {
	return l.runID
}

// State returns the step the loop is currently in. It is safe to call from
// any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// Run generates, filters, probes and reports candidates until ctx ends or no
// candidate can be produced. It returns ctx.Err() on cancellation and an error
// wrapping ErrExhausted otherwise; it never returns nil.
func (l *Loop) Run(ctx context.Context, sink Sink) error {
	l.logger.InfoContext(ctx, "Discovery started",
		slog.Int("min_length", l.config.MinLength),
		slog.Int("max_length", l.config.MaxLength),
		slog.String("tld", l.config.TLD),
	)

	err := l.run(ctx, sink)
	if errors.Is(err, ErrExhausted) {
		l.setState(StateExhausted)
		l.logger.WarnContext(ctx, "Discovery exhausted", slog.Any("error", err))
	} else {
		l.setState(StateStopped)
		l.logger.InfoContext(ctx, "Discovery stopped", slog.Any("reason", err))
	}
	return err
}

func (l *Loop) run(ctx context.Context, sink Sink) error {
	rejections := 0
	for {
		l.setState(StateGenerating)
		stem, err := l.sampler.Next(ctx)
		if err != nil {
			if errors.Is(err, markov.ErrExhausted) {
				return l.exhaust(ctx, sink, "sampler_exhausted", err)
			}
			return err
		}

		l.setState(StateFiltering)
		candidate := filter.NewCandidate(stem, l.config.Prefix, l.config.Suffix)
		if err = l.filter.Check(candidate); err != nil {
			rejections++
			event := l.newEvent(candidate, OutcomeFilteredOut)
			var rejection *filter.RejectionError
			if errors.As(err, &rejection) {
				event.Reason = string(rejection.Reason)
			}
			l.report(ctx, sink, event, err)

			if l.config.MaxRejections > 0 && rejections >= l.config.MaxRejections {
				return l.exhaust(ctx, sink, "max_rejections",
					fmt.Errorf("%d consecutive candidates rejected", rejections))
			}
			continue
		}
		rejections = 0

		l.setState(StateProbing)
		result, err := l.prober.Probe(ctx, candidate.Name)
		if err != nil {
			return err
		}

		l.setState(StateReporting)
		event := l.newEvent(candidate, outcomeOf(result.Status))
		event.Raw = result.Raw
		if event.Outcome == OutcomeIndeterminate {
			event.Reason = "empty_response"
			if result.Err != nil {
				event.Reason = "transport_error"
			}
		}
		l.report(ctx, sink, event, result.Err)
	}
}

func (l *Loop) newEvent(c filter.Candidate, outcome Outcome) Event {
	return Event{
		RunID:   l.runID,
		Stem:    c.Stem,
		Name:    c.Name,
		Domain:  l.prober.Domain(c.Name),
		Outcome: outcome,
		Time:    time.Now(),
	}
}

// exhaust emits the terminal Exhausted event and returns the run's final error.
func (l *Loop) exhaust(ctx context.Context, sink Sink, reason string, cause error) error {
	l.setState(StateExhausted)
	event := Event{
		RunID:   l.runID,
		Outcome: OutcomeExhausted,
		Reason:  reason,
		Time:    time.Now(),
	}
	l.report(ctx, sink, event, cause)
	return fmt.Errorf("%w: %w", ErrExhausted, cause)
}

// shouldReport applies the reporting policy.
func (l *Loop) shouldReport(o Outcome) bool {
	switch o {
	case OutcomeAvailable, OutcomeExhausted:
		return true
	case OutcomeFilteredOut, OutcomeTaken:
		return l.config.ShowRejected
	case OutcomeRateLimited, OutcomeIndeterminate:
		return l.config.ShowRejected || l.config.DebugTrace
	}
	return false
}

// report hands event to the recorder, then to sink if the policy allows it.
// cause is attached as Event.Err only under DebugTrace, as is the raw reply.
func (l *Loop) report(ctx context.Context, sink Sink, event Event, cause error) {
	l.logger.DebugContext(ctx, "Candidate processed",
		slog.String("name", event.Name),
		slog.String("outcome", event.Outcome.String()),
		slog.String("reason", event.Reason),
	)

	if l.recorder != nil && event.Outcome != OutcomeFilteredOut {
		recorded := event
		recorded.Raw, recorded.Err = "", nil
		if err := l.recorder.Report(ctx, recorded); err != nil && ctx.Err() == nil {
			l.logger.ErrorContext(ctx, "Failed to record event",
				slog.String("name", event.Name),
				slog.String("outcome", event.Outcome.String()),
				slog.Any("error", err),
			)
		}
	}

	if !l.shouldReport(event.Outcome) {
		return
	}
	if l.config.DebugTrace {
		event.Err = cause
	} else {
		event.Raw = ""
	}

	if err := sink.Report(ctx, event); err != nil && ctx.Err() == nil {
		l.logger.ErrorContext(ctx, "Failed to report event",
			slog.String("name", event.Name),
			slog.String("outcome", event.Outcome.String()),
			slog.Any("error", err),
		)
	}
}
