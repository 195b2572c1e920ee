package whois

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Result is the outcome of probing a single domain.
type Result struct {
	Domain string
	Status Status
	// Raw is the registry reply, empty when the lookup failed.
	Raw string
	// Err is the transport error behind an Indeterminate status.
	Err error
}

// ProberConfig holds the pacing parameters of a Prober.
type ProberConfig struct {
	// TLD is appended to every probed name.
	TLD string
	// WaitTime is the minimum delay between the starts of two lookups.
	WaitTime time.Duration
	// Penalty is how long probing is suspended after a RateLimited reply.
	Penalty time.Duration
}

// DefaultProberConfig returns the pacing used against the com registry.
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		TLD:      "com",
		WaitTime: 100 * time.Millisecond,
		Penalty:  10 * time.Second,
	}
}

// backoffState is owned by one Prober and only touched from Probe.
type backoffState struct {
	lastStart     time.Time
	cooldownUntil time.Time
}

// Prober paces lookups against a registry and classifies their replies.
type Prober struct {
	lookup     Lookup
	classifier Classifier
	config     ProberConfig
	backoff    backoffState
	logger     *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithClassifier replaces the DefaultClassifier.
func WithClassifier(c Classifier) ProberOption {
	return func(p *Prober) {
		if c != nil {
			p.classifier = c
		}
	}
}

// NewProber creates a Prober that resolves lookups through lookup.
func NewProber(lookup Lookup, config ProberConfig, opts ...ProberOption) *Prober {
	config.TLD = strings.TrimPrefix(strings.ToLower(config.TLD), ".")
	p := &Prober{
		lookup:     lookup,
		classifier: DefaultClassifier(),
		config:     config,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetLogger sets the logger for the Prober. By default, all logs are discarded.
func (p *Prober) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Domain returns the domain probed for name.
func (p *Prober) Domain(name string) string {
	if p.config.TLD == "" {
		return name
	}
	return name + "." + p.config.TLD
}

// CooldownUntil returns the end of the current rate-limit cooldown, or the
// zero time if none was ever entered.
func (p *Prober) CooldownUntil() time.Time {
	return p.backoff.cooldownUntil
}

// Probe looks up name and classifies the reply. It first waits until WaitTime
// has passed since the previous lookup began and any cooldown has ended. On a
// RateLimited reply it extends the cooldown to at least now+Penalty and waits
// it out before returning.
//
// Transport failures are reported as Indeterminate with Result.Err set. The
// returned error is non-nil only when ctx ends during a wait or the lookup.
func (p *Prober) Probe(ctx context.Context, name string) (Result, error) {
	domain := p.Domain(name)
	result := Result{Domain: domain, Status: Indeterminate}

	readyAt := p.backoff.lastStart.Add(p.config.WaitTime)
	if p.backoff.cooldownUntil.After(readyAt) {
		readyAt = p.backoff.cooldownUntil
	}
	if err := sleepUntil(ctx, readyAt); err != nil {
		return result, err
	}

	p.backoff.lastStart = time.Now()
	raw, err := p.lookup.Lookup(ctx, domain)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if err != nil {
		result.Err = err
		p.logger.DebugContext(ctx, "Lookup failed",
			slog.String("domain", domain),
			slog.Any("error", err),
		)
		return result, nil
	}

	result.Raw = raw
	result.Status = p.classifier.Classify(domain, raw)

	if result.Status == RateLimited {
		until := time.Now().Add(p.config.Penalty)
		if until.After(p.backoff.cooldownUntil) {
			p.backoff.cooldownUntil = until
		}
		p.logger.WarnContext(ctx, "Registry rate limit reached, cooling down",
			slog.String("domain", domain),
			slog.Duration("penalty", p.config.Penalty),
		)
		if err = sleepUntil(ctx, p.backoff.cooldownUntil); err != nil {
			return result, err
		}
	}

	return result, nil
}

// sleepUntil blocks until t or until ctx is done.
func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
