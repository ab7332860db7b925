package domain

import "time"

// Step es un estado de la máquina de una iteración (mercado, ciclo).
type Step int

const (
	StepStart Step = iota
	StepSnapshotRead
	StepStaleOrderCancel
	StepPlanQuotes
	StepSubmitBid
	StepSubmitAsk
	StepSubmitCrossing
	StepVerifyOutcomes
	StepDone
)

var stepNames = [...]string{
	StepStart:            "start",
	StepSnapshotRead:     "snapshot_read",
	StepStaleOrderCancel: "stale_order_cancel",
	StepPlanQuotes:       "plan_quotes",
	StepSubmitBid:        "submit_bid",
	StepSubmitAsk:        "submit_ask",
	StepSubmitCrossing:   "submit_crossing",
	StepVerifyOutcomes:   "verify_outcomes",
	StepDone:             "done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// MarketResult es el resultado de una iteración de mercado. Sólo se usa para logs,
// la consola y el journal opcional.
type MarketResult struct {
	MarketID  string
	Reached   Step // último paso alcanzado
	Failed    bool
	FailedAt  Step
	Err       error
	Snapshot  MarketSnapshot
	Plan      *QuotePlan
	Cancelled bool
	Outcomes  []OrderOutcome
	StartedAt time.Time
	Duration  time.Duration
}

// OK devuelve true si la iteración llegó a Done.
func (r MarketResult) OK() bool {
	return !r.Failed && r.Reached == StepDone
}

// Outcome devuelve el resultado de la pata dada, o SKIPPED si no se envió.
func (r MarketResult) Outcome(leg Leg) OrderOutcome {
	for _, o := range r.Outcomes {
		if o.Leg == leg {
			return o
		}
	}
	return OrderOutcome{Leg: leg, Status: OutcomeSkipped}
}

// CycleResult agrega los resultados de una pasada completa sobre los mercados.
type CycleResult struct {
	ID         string // uuid para correlacionar logs y journal
	Number     int
	StartedAt  time.Time
	FinishedAt time.Time
	Markets    []MarketResult
	Err        error // error escapado del ciclo (panic recuperado)
}

// Passed cuenta los mercados que llegaron a Done.
func (c CycleResult) Passed() int {
	n := 0
	for _, m := range c.Markets {
		if m.OK() {
			n++
		}
	}
	return n
}

// Duration devuelve la duración total del ciclo.
func (c CycleResult) Duration() time.Duration {
	return c.FinishedAt.Sub(c.StartedAt)
}
