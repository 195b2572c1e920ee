package main

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/CTAG07/namehunt/pkg/markov"
)

//go:embed words.txt
var defaultWords string

// readLexicon loads the word list at path, or the built-in list when path is
// empty. Words too short for order are dropped.
func readLexicon(path string, order int) (*markov.Lexicon, error) {
	var r io.Reader = strings.NewReader(defaultWords)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open word list: %w", err)
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)
		r = f
	}
	return markov.ReadLexicon(r, markov.WithMinWordLength(order+1))
}

// train builds a table from the word list at path.
func (a *app) train(path string, order int) (*markov.Table, error) {
	lex, err := readLexicon(path, order)
	if err != nil {
		return nil, err
	}
	table, err := markov.Build(lex, order)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Model trained",
		slog.Int("words", lex.Len()),
		slog.Int("order", order),
	)
	return table, nil
}

// loadOrTrain returns the stored model name, training and saving it from the
// word list if it does not exist yet. An empty name trains a throwaway model.
func (a *app) loadOrTrain(ctx context.Context, name, wordsPath string, order int) (*markov.Table, error) {
	if name != "" {
		table, err := a.store.LoadModel(ctx, name)
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to load model %q: %w", name, err)
		}
	}

	table, err := a.train(wordsPath, order)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err = a.store.SaveModel(ctx, name, table); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func newTrainCmd(configPath *string) *cobra.Command {
	var name, wordsPath string
	var order int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from a word list and store it",
		Long: `Train a character-level Markov model and save it under a name, replacing
any model of the same name.

Example: namehunt train --name latin --words ./latin.txt --order 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("name") {
				name = a.config.App.ModelName
			}
			if !cmd.Flags().Changed("words") {
				wordsPath = a.config.App.WordListPath
			}
			if !cmd.Flags().Changed("order") {
				order = a.config.Hunt.Order
			}

			table, err := a.train(wordsPath, order)
			if err != nil {
				return err
			}
			if err = a.store.SaveModel(cmd.Context(), name, table); err != nil {
				return err
			}
			stats := table.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved model %q: order %d, %d words, %d contexts, %d transitions\n",
				name, stats.Order, stats.Words, stats.Contexts, stats.Transitions)
			return err
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Model name (defaults to the configured model)")
	cmd.Flags().StringVarP(&wordsPath, "words", "w", "", "Word list, one word per line (defaults to the built-in list)")
	cmd.Flags().IntVarP(&order, "order", "o", 3, "Number of preceding letters used as context")

	return cmd
}

func newModelsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			infos, err := a.store.ModelInfos(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(infos))
			for name := range infos {
				names = append(names, name)
			}
			slices.Sort(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tORDER\tWORDS\tCONTEXTS\tTRANSITIONS\tMEAN LEN\tMEDIAN LEN")
			for _, name := range names {
				table, err := a.store.LoadModel(ctx, name)
				if err != nil {
					return err
				}
				s := table.Stats()
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.1f\n",
					name, s.Order, s.Words, s.Contexts, s.Transitions, s.MeanWordLength, s.MedianWordLength)
			}
			return tw.Flush()
		},
	}
}

func newSampleCmd(configPath *string) *cobra.Command {
	var count, minLength, maxLength int
	var seed uint64
	var temperature float64

	cmd := &cobra.Command{
		Use:   "sample [model]",
		Short: "Print words generated by a model without probing them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count must not be negative, got %d", count)
			}
			if count == 0 {
				return nil
			}

			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			name := a.config.App.ModelName
			if len(args) == 1 {
				name = args[0]
			}
			table, err := a.loadOrTrain(cmd.Context(), name, a.config.App.WordListPath, a.config.Hunt.Order)
			if err != nil {
				return err
			}

			constraints := a.config.Discovery().Constraints()
			if cmd.Flags().Changed("min-length") {
				constraints.MinLength = minLength
			}
			if cmd.Flags().Changed("max-length") {
				constraints.MaxLength = maxLength
			}
			if !cmd.Flags().Changed("temperature") {
				temperature = a.config.Hunt.Temperature
			}
			opts := []markov.GenerateOption{
				markov.WithTemperature(temperature),
				markov.WithMaxAttempts(a.config.Hunt.MaxAttempts),
			}
			if seed != 0 {
				opts = append(opts, markov.WithSeed(seed))
			}
			sampler, err := markov.NewSampler(table, constraints, opts...)
			if err != nil {
				return err
			}
			sampler.SetLogger(a.logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			printed := 0
			for word := range sampler.Stream(ctx) {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), word); err != nil {
					return err
				}
				if printed++; printed >= count {
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of words to print")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "Minimum word length (defaults to the configured value)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum word length (defaults to the configured value)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for deterministic output (0 is random)")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 1.0, "Sampling temperature (defaults to the configured value)")

	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <model>",
		Short: "Export a stored model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if out == "" || out == "-" {
				return a.store.ExportModel(cmd.Context(), args[0], cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err = a.store.ExportModel(cmd.Context(), args[0], &buf); err != nil {
				return err
			}
			if err = atomic.WriteFile(out, &buf); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON model, replacing any model of the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open model file: %w", err)
				}
				defer func(f *os.File) {
					_ = f.Close()
				}(f)
				r = f
			}

			name, err := a.store.ImportModel(cmd.Context(), r)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported model %q\n", name)
			return err
		},
	}
}

func newRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model>",
		Short: "Delete a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.store.RemoveModel(cmd.Context(), args[0])
		},
	}
}
