package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CTAG07/namehunt/pkg/discovery"
)

// rawPreview is how much of a registry reply is shown under --debug-trace.
const rawPreview = 70

// formatEvent renders an event as one plain line: the outcome, the domain and,
// when debug is set, the reason, error and start of the registry reply.
func formatEvent(e discovery.Event, debug bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-13s", e.Outcome)
	if e.Domain != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Domain)
	}
	if e.Reason != "" && (debug || e.Domain == "") {
		fmt.Fprintf(&sb, " (%s)", e.Reason)
	}
	if debug {
		if e.Err != nil {
			fmt.Fprintf(&sb, " error=%q", e.Err.Error())
		}
		if raw := strings.TrimSpace(e.Raw); raw != "" {
			if r := []rune(raw); len(r) > rawPreview {
				raw = string(r[:rawPreview])
			}
			fmt.Fprintf(&sb, " raw=%q", raw)
		}
	}
	return sb.String()
}

// eventPrinter is a discovery.Sink writing one line per event.
type eventPrinter struct {
	w     io.Writer
	debug bool
}

func (p *eventPrinter) Report(_ context.Context, e discovery.Event) error {
	_, err := fmt.Fprintln(p.w, formatEvent(e, p.debug))
	return err
}
