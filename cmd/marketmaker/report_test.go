package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/adapters/storage"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunJournalReport(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	started := time.Now().Add(-time.Minute)
	require.NoError(t, j.RecordCycle(ctx, domain.CycleResult{
		ID:         "3f1c2d4e-0000-0000-0000-000000000000",
		Number:     7,
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Err:        errors.New("iteration crashed: notify cycle 7: panic: boom"),
		Markets: []domain.MarketResult{
			{
				MarketID: "0",
				Reached:  domain.StepDone,
				Snapshot: domain.MarketSnapshot{MarketID: "0", ReferencePrice: 10_050_000, Height: 1234, HasHeight: true},
				Plan:     &domain.QuotePlan{MarketID: "0", Bid: 9_850_000, Ask: 10_250_000, Crossing: 9_850_000, GoodTilBlock: 1244},
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
	}))

	var buf bytes.Buffer
	require.NoError(t, runJournalReport(ctx, &buf, j, 5))

	out := buf.String()
	assert.Contains(t, out, "cycle 7 3f1c2d4e")
	assert.Contains(t, out, "1/2 ok")
	assert.Contains(t, out, "panic: boom")
	assert.Contains(t, out, "10.05")
	assert.Contains(t, out, "C/R/?")
	assert.Contains(t, out, "FAILED@plan_quotes")
	assert.Contains(t, out, "-/-/-")
}

func TestRunJournalReport_Empty(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	var buf bytes.Buffer
	require.NoError(t, runJournalReport(context.Background(), &buf, j, 5))
	assert.Contains(t, buf.String(), "(none)")
}
