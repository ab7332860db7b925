package notify_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/adapters/notify"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCycle() domain.CycleResult {
	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return domain.CycleResult{
		ID:         "3f1c2d4e-0000-4000-8000-000000000001",
		Number:     7,
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Markets: []domain.MarketResult{
			{
				MarketID: "0",
				Reached:  domain.StepDone,
				Snapshot: domain.MarketSnapshot{MarketID: "0", ReferencePrice: 10_050_000, Height: 1234, HasHeight: true},
				Plan:     &domain.QuotePlan{Bid: 9_850_000, Ask: 10_250_000, Crossing: 9_850_000},
				Outcomes: []domain.OrderOutcome{
					{Leg: domain.LegBid, Status: domain.OutcomeConfirmed},
					{Leg: domain.LegAsk, Status: domain.OutcomeRejected},
					{Leg: domain.LegCrossing, Status: domain.OutcomeUnknown},
				},
			},
			{
				MarketID: "1",
				Reached:  domain.StepPlanQuotes,
				Failed:   true,
				FailedAt: domain.StepPlanQuotes,
				Err:      domain.ErrHeightUnavailable,
				Snapshot: domain.MarketSnapshot{MarketID: "1", ReferencePrice: 10_000_000, DefaultPrice: true},
			},
		},
	}
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeCycle()))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), "modo compacto = una línea")
	assert.Contains(t, out, "cycle 7 3f1c2d4e")
	assert.Contains(t, out, "1/2 ok")
	assert.Contains(t, out, "m0 $10.05 C/R/?")
	assert.Contains(t, out, "m1 FAILED@plan_quotes")
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), makeCycle()))

	out := buf.String()
	assert.Contains(t, out, "9850000")
	assert.Contains(t, out, "10250000")
	assert.Contains(t, out, "10.05")
	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "C/R/?")
	assert.Contains(t, out, "-/-/-")
	assert.Contains(t, out, "FAILED@plan_quotes")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "yes")
}

func TestConsole_Notify_EmptyCycle(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), domain.CycleResult{Number: 1}))
	assert.Contains(t, buf.String(), "no markets run")
}

func TestConsole_Notify_LongErrorTruncated(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	cycle := makeCycle()
	cycle.Err = errors.New(strings.Repeat("A", 100))
	require.NoError(t, n.Notify(context.Background(), cycle))

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("A", 61))
}
