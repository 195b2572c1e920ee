package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CTAG07/namehunt/pkg/discovery"
	"github.com/CTAG07/namehunt/pkg/markov"
	"github.com/CTAG07/namehunt/pkg/whois"
)

func newHuntCmd(configPath *string) *cobra.Command {
	var (
		modelName    string
		wordsPath    string
		seed         uint64
		prefix       string
		suffix       string
		tld          string
		showRejected bool
		debugTrace   bool
		noRecord     bool
	)

	cmd := &cobra.Command{
		Use:   "hunt",
		Short: "Generate candidate names and report the unregistered ones",
		Long: `Generate candidate names from the configured model, filter them by length
and syllables and probe each survivor over WHOIS. Available domains are printed
one per line until the hunt is interrupted. Every checked domain is recorded in
the ledger whatever is printed; see the found command.

Example: namehunt hunt --suffix ly --tld com --show-rejected`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			flags := cmd.Flags()
			appCfg, huntCfg := &a.config.App, &a.config.Hunt
			if flags.Changed("model") {
				appCfg.ModelName = modelName
			}
			if flags.Changed("words") {
				appCfg.WordListPath = wordsPath
			}
			if flags.Changed("prefix") {
				huntCfg.Prefix = prefix
			}
			if flags.Changed("suffix") {
				huntCfg.Suffix = suffix
			}
			if flags.Changed("tld") {
				huntCfg.TLD = tld
			}
			if flags.Changed("show-rejected") {
				huntCfg.ShowRejected = showRejected
			}
			if flags.Changed("debug-trace") {
				huntCfg.DebugTrace = debugTrace
			}
			if noRecord {
				appCfg.RecordResults = false
			}

			return runHunt(cmd, a, seed)
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Stored model to hunt with (trained on first use)")
	cmd.Flags().StringVarP(&wordsPath, "words", "w", "", "Word list to train from, one word per line")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for deterministic generation (0 is random)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Text prepended to every generated stem")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Text appended to every generated stem")
	cmd.Flags().StringVar(&tld, "tld", "", "Top-level domain to probe")
	cmd.Flags().BoolVar(&showRejected, "show-rejected", false, "Also print filtered, taken and failed candidates")
	cmd.Flags().BoolVar(&debugTrace, "debug-trace", false, "Print registry replies and lookup errors")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not record checked domains in the ledger (all outcomes are recorded otherwise)")

	return cmd
}

func runHunt(cmd *cobra.Command, a *app, seed uint64) error {
	ctx := cmd.Context()
	config := a.config.Discovery()
	if err := config.Validate(); err != nil {
		return err
	}

	table, err := a.loadOrTrain(ctx, a.config.App.ModelName, a.config.App.WordListPath, config.Order)
	if err != nil {
		return err
	}
	if table.Order() != config.Order {
		a.logger.Warn("Stored model order differs from configured order, using the model",
			slog.String("model", a.config.App.ModelName),
			slog.Int("model_order", table.Order()),
			slog.Int("config_order", config.Order),
		)
	}

	client := newWhoisClient(a.config.Hunt)
	server, err := client.Resolve(ctx, config.TLD)
	if err != nil {
		return fmt.Errorf("cannot hunt .%s: %w", config.TLD, err)
	}

	opts := huntOptions(a.config.Hunt, seed)
	if a.config.App.RecordResults {
		opts = append(opts, discovery.WithRecorder(a.ledger))
	}
	loop, err := discovery.New(table, client, config, opts...)
	if err != nil {
		return err
	}
	loop.SetLogger(a.logger)

	var sink discovery.Sink = &eventPrinter{w: cmd.OutOrStdout(), debug: config.DebugTrace}

	a.logger.Info("Hunt started",
		slog.String("run_id", loop.RunID().String()),
		slog.String("pattern", config.Prefix+"*"+config.Suffix+"."+config.TLD),
		slog.String("whois_server", server.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)
	events, wait := loop.Stream(gctx)

	g.Go(wait)
	g.Go(func() error {
		for event := range events {
			if err := sink.Report(gctx, event); err != nil {
				a.logger.Error("Failed to report event",
					slog.String("domain", event.Domain),
					slog.Any("error", err),
				)
			}
		}
		return nil
	})

	err = g.Wait()
	switch {
	case errors.Is(err, context.Canceled):
		a.logger.Info("Hunt interrupted", slog.String("run_id", loop.RunID().String()))
		return nil
	case errors.Is(err, discovery.ErrExhausted):
		return fmt.Errorf("hunt ended: %w", err)
	default:
		return err
	}
}

func huntOptions(h HuntConfig, seed uint64) []discovery.Option {
	opts := []discovery.Option{
		discovery.WithSamplerOptions(markov.WithTemperature(h.Temperature)),
	}
	if seed != 0 {
		opts = append(opts, discovery.WithSeed(seed))
	}
	return opts
}

func newWhoisClient(h HuntConfig) *whois.Client {
	opts := []whois.ClientOption{
		whois.WithTimeout(time.Duration(h.LookupTimeoutMs) * time.Millisecond),
		whois.WithDiscovery(h.WhoisDiscovery),
	}
	if h.WhoisServer != "" {
		opts = append(opts, whois.WithServer(h.TLD, whois.Server{Addr: h.WhoisServer, Query: h.WhoisQuery}))
	}
	return whois.NewClient(opts...)
}
