package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/adapters/storage"
	"github.com/alejandrodnm/devnetmm/internal/application/engine"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// journalReader es la parte de lectura del journal que usa el reporte.
type journalReader interface {
	RecentCycles(ctx context.Context, limit int) ([]storage.CycleRecord, error)
	MarketResults(ctx context.Context, cycleID string) ([]storage.MarketRecord, error)
}

// runJournalReport imprime los últimos limit ciclos del journal, el más
// reciente primero, con una tabla por ciclo.
func runJournalReport(ctx context.Context, w io.Writer, j journalReader, limit int) error {
	cycles, err := j.RecentCycles(ctx, limit)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	fmt.Fprintf(w, "\n── JOURNAL (last %d cycles) ──\n", limit)
	if len(cycles) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}

	for _, c := range cycles {
		fmt.Fprintf(w, "\ncycle %d %s  %s  %d/%d ok  (%s)\n",
			c.Number, shortCycleID(c.ID),
			c.StartedAt.Format("2006-01-02 15:04:05"),
			c.Passed, c.Markets,
			c.FinishedAt.Sub(c.StartedAt).Round(time.Millisecond))
		if c.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", engine.TruncateStr(c.Error, 120))
		}

		markets, err := j.MarketResults(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("report: cycle %s: %w", c.ID, err)
		}
		if len(markets) == 0 {
			continue
		}

		table := tablewriter.NewWriter(w)
		table.Header("Market", "Price $", "Default", "Height", "Bid", "Ask", "Cross", "B/A/X", "Step", "Error")
		for _, m := range markets {
			bid, ask, cross := "-", "-", "-"
			if m.GoodTilBlock > 0 {
				bid, ask, cross = m.Bid.String(), m.Ask.String(), m.Crossing.String()
			}
			height := "n/a"
			if m.Height > 0 {
				height = fmt.Sprintf("%d", m.Height)
			}
			step := m.Reached
			if m.FailedAt != "" {
				step = "FAILED@" + m.FailedAt
			}
			def := "no"
			if m.DefaultPrice {
				def = "yes"
			}
			table.Append(
				m.MarketID,
				m.ReferencePrice.Dollars().StringFixed(2),
				def,
				height,
				bid,
				ask,
				cross,
				statusLetter(m.BidStatus)+"/"+statusLetter(m.AskStatus)+"/"+statusLetter(m.CrossingStatus),
				step,
				engine.TruncateStr(m.Error, 40),
			)
		}
		table.Render()
	}
	return nil
}

func statusLetter(s domain.OutcomeStatus) string {
	switch s {
	case domain.OutcomeConfirmed:
		return "C"
	case domain.OutcomeRejected:
		return "R"
	case domain.OutcomeFailed:
		return "F"
	case domain.OutcomeUnknown:
		return "?"
	default:
		return "-"
	}
}

func shortCycleID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
