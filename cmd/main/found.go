package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/CTAG07/namehunt/pkg/discovery"
)

func newFoundCmd(configPath *string) *cobra.Command {
	var outcomeName string
	var limit int
	var summary bool

	cmd := &cobra.Command{
		Use:   "found",
		Short: "List domains recorded by previous hunts",
		Long: `List domains from the ledger by their latest outcome, most recent first.

Example: namehunt found --outcome taken --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if summary {
				s, err := a.ledger.Summary(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%d domains, %d reports\n", s.Domains, s.Reports)
				for o := discovery.OutcomeAvailable; o <= discovery.OutcomeExhausted; o++ {
					if n := s.Outcomes[o]; n > 0 {
						_, _ = fmt.Fprintf(out, "  %-14s %d\n", o, n)
					}
				}
				return nil
			}

			outcome, ok := discovery.ParseOutcome(outcomeName)
			if !ok {
				return fmt.Errorf("unknown outcome %q", outcomeName)
			}
			entries, err := a.ledger.Found(cmd.Context(), outcome, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DOMAIN\tHITS\tFIRST SEEN\tLAST SEEN")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Domain, e.Hits,
					e.FirstSeen.Local().Format(time.DateTime), e.LastSeen.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&outcomeName, "outcome", discovery.OutcomeAvailable.String(), "Outcome to list (available, taken, rate_limited, indeterminate, filtered_out)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of domains to list (0 for all)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print counts per outcome instead")

	return cmd
}
