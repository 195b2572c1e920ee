package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/namehunt/pkg/discovery"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event discovery.Event
		debug bool
		want  string
	}{
		{
			name:  "available",
			event: discovery.Event{Outcome: discovery.OutcomeAvailable, Domain: "zorbstack.com", Raw: "No match"},
			want:  "available     zorbstack.com",
		},
		{
			name:  "filtered hides reason without debug",
			event: discovery.Event{Outcome: discovery.OutcomeFilteredOut, Domain: "banananastack.com", Reason: "too_many_syllables"},
			want:  "filtered_out  banananastack.com",
		},
		{
			name:  "exhausted always shows reason",
			event: discovery.Event{Outcome: discovery.OutcomeExhausted, Reason: "max_rejections"},
			want:  "exhausted     (max_rejections)",
		},
		{
			name: "debug trace",
			event: discovery.Event{
				Outcome: discovery.OutcomeIndeterminate,
				Domain:  "zorbstack.com",
				Reason:  "transport_error",
				Err:     errors.New("connection refused"),
			},
			debug: true,
			want:  `indeterminate zorbstack.com (transport_error) error="connection refused"`,
		},
		{
			name:  "debug raw reply",
			event: discovery.Event{Outcome: discovery.OutcomeTaken, Domain: "cat.com", Raw: "  Domain Name: CAT.COM\r\n"},
			debug: true,
			want:  `taken         cat.com raw="Domain Name: CAT.COM"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatEvent(tt.event, tt.debug))
		})
	}
}

func TestFormatEvent_TruncatesRaw(t *testing.T) {
	raw := strings.Repeat("x", 200)
	line := formatEvent(discovery.Event{Outcome: discovery.OutcomeTaken, Domain: "a.com", Raw: raw}, true)
	assert.Contains(t, line, `raw="`+strings.Repeat("x", rawPreview)+`"`)
	assert.NotContains(t, line, strings.Repeat("x", rawPreview+1))
}

func TestEventPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &eventPrinter{w: &buf}

	require.NoError(t, p.Report(context.Background(), discovery.Event{Outcome: discovery.OutcomeAvailable, Domain: "a.com"}))
	require.NoError(t, p.Report(context.Background(), discovery.Event{Outcome: discovery.OutcomeAvailable, Domain: "b.com"}))

	assert.Equal(t, "available     a.com\navailable     b.com\n", buf.String())
}
