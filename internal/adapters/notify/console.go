package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/application/engine"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, cycle domain.CycleResult) error {
	if len(cycle.Markets) == 0 {
		fmt.Fprintf(c.out, "[%s] cycle %d: no markets run\n", clock(cycle), cycle.Number)
		return nil
	}

	if c.table {
		c.printFull(cycle)
	} else {
		c.printCompact(cycle)
	}
	return nil
}

// printCompact imprime una línea por ciclo.
func (c *Console) printCompact(cycle domain.CycleResult) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] cycle %d %s → %d/%d ok (%s)",
		clock(cycle), cycle.Number, shortID(cycle.ID),
		cycle.Passed(), len(cycle.Markets), cycle.Duration().Round(time.Second))

	for _, m := range cycle.Markets {
		if m.Failed {
			fmt.Fprintf(&sb, " | m%s FAILED@%s", m.MarketID, m.FailedAt)
			continue
		}
		fmt.Fprintf(&sb, " | m%s $%s %s", m.MarketID, m.Snapshot.ReferencePrice.Dollars().StringFixed(2), legStatuses(m))
		if m.Snapshot.DefaultPrice {
			sb.WriteString(" (default)")
		}
	}
	if cycle.Err != nil {
		fmt.Fprintf(&sb, " | err: %s", engine.TruncateStr(cycle.Err.Error(), 60))
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla con una fila por mercado.
func (c *Console) printFull(cycle domain.CycleResult) {
	fmt.Fprintf(c.out, "\n[%s] cycle %d (%s): %d/%d markets ok in %s\n",
		clock(cycle), cycle.Number, cycle.ID, cycle.Passed(), len(cycle.Markets),
		cycle.Duration().Round(time.Millisecond))

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Price $", "Default", "Height", "Bid", "Ask", "Cross", "B/A/X", "Step", "Error")

	for _, m := range cycle.Markets {
		bid, ask, cross := "-", "-", "-"
		if m.Plan != nil {
			bid, ask, cross = m.Plan.Bid.String(), m.Plan.Ask.String(), m.Plan.Crossing.String()
		}
		height := "n/a"
		if m.Snapshot.HasHeight {
			height = fmt.Sprintf("%d", m.Snapshot.Height)
		}
		step := m.Reached.String()
		errMsg := ""
		if m.Failed {
			step = "FAILED@" + m.FailedAt.String()
		}
		if m.Err != nil {
			errMsg = engine.TruncateStr(m.Err.Error(), 40)
		}

		table.Append(
			m.MarketID,
			m.Snapshot.ReferencePrice.Dollars().StringFixed(2),
			yesNo(m.Snapshot.DefaultPrice),
			height,
			bid,
			ask,
			cross,
			legStatuses(m),
			step,
			errMsg,
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  B/A/X = bid/ask/cross: C=confirmed R=rejected F=failed ?=unknown -=skipped")
	if cycle.Err != nil {
		fmt.Fprintf(c.out, "  ⚠ cycle error: %s\n", cycle.Err)
	}
	fmt.Fprintln(c.out)
}

func legStatuses(m domain.MarketResult) string {
	return statusIcon(m.Outcome(domain.LegBid).Status) + "/" +
		statusIcon(m.Outcome(domain.LegAsk).Status) + "/" +
		statusIcon(m.Outcome(domain.LegCrossing).Status)
}

func statusIcon(s domain.OutcomeStatus) string {
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

func clock(cycle domain.CycleResult) string {
	t := cycle.FinishedAt
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04:05")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
