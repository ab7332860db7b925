// Package lifecycle runs one market iteration: cancel the stale quote, plan new
// prices, submit bid, ask and crossing order, then inspect the book.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/application/quote"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/pacing"
	"github.com/alejandrodnm/devnetmm/internal/ports"
)

// staleOrderNumber is the fixed slot the quote orders occupy.
const staleOrderNumber uint32 = 0

// Config holds the fixed quoting parameters.
type Config struct {
	TickSize        domain.Price
	BaseSize        uint64
	LookaheadBlocks uint64
}

// Manager executes the per-market state machine. It keeps no state between
// iterations: everything it needs is re-read from the chain each time.
type Manager struct {
	reader ports.ChainReader
	exec   ports.OrderExecutor
	maker  domain.TradingIdentity
	taker  domain.TradingIdentity
	cfg    Config
	policy pacing.Policy
}

// New creates a lifecycle manager. The maker rests the bid; the taker rests
// the ask and sends the crossing order against the bid.
func New(
	reader ports.ChainReader,
	exec ports.OrderExecutor,
	maker, taker domain.TradingIdentity,
	cfg Config,
	policy pacing.Policy,
) *Manager {
	return &Manager{
		reader: reader,
		exec:   exec,
		maker:  maker,
		taker:  taker,
		cfg:    cfg,
		policy: policy,
	}
}

// RunMarket runs Start → SnapshotRead → StaleOrderCancel → PlanQuotes →
// SubmitBid → SubmitAsk → SubmitCrossing → VerifyOutcomes → Done.
// A failed step ends this market's iteration only. A panic is reported as a
// failure at the step being run, wrapping domain.ErrCrashed.
func (m *Manager) RunMarket(ctx context.Context, marketID string) (res domain.MarketResult) {
	res = domain.MarketResult{MarketID: marketID, Reached: domain.StepStart, StartedAt: time.Now()}
	log := slog.With("market", marketID)

	defer func() {
		if r := recover(); r != nil {
			res = fail(res, res.Reached, fmt.Errorf("%w: %s: panic: %v", domain.ErrCrashed, res.Reached, r))
		}
		res.Duration = time.Since(res.StartedAt)
		if res.Failed {
			log.Warn("lifecycle: market iteration failed",
				"step", res.FailedAt.String(), "err", res.Err, "elapsed", res.Duration.Round(time.Millisecond))
			return
		}
		log.Info("lifecycle: market iteration done",
			"bid", res.Outcome(domain.LegBid).Status,
			"ask", res.Outcome(domain.LegAsk).Status,
			"crossing", res.Outcome(domain.LegCrossing).Status,
			"elapsed", res.Duration.Round(time.Millisecond))
	}()

	// Start: open orders before touching anything.
	m.logDocument(log, "open orders before", m.reader.GetOpenOrders(ctx, marketID))

	// SnapshotRead
	res.Reached = domain.StepSnapshotRead
	price, isDefault := m.reader.GetReferencePrice(ctx, marketID)
	height, hasHeight := m.reader.GetCurrentHeight(ctx)
	res.Snapshot = domain.MarketSnapshot{
		MarketID:       marketID,
		ReferencePrice: price,
		DefaultPrice:   isDefault,
		Height:         height,
		HasHeight:      hasHeight,
	}
	log.Info("lifecycle: snapshot",
		"price", price.Label(), "default", isDefault, "height", height, "hasHeight", hasHeight)

	// StaleOrderCancel: skipped without height, never blocking.
	res.Reached = domain.StepStaleOrderCancel
	if hasHeight {
		res.Cancelled = m.cancelStale(ctx, log, marketID, height)
	} else {
		log.Warn("lifecycle: height unavailable, skipping stale order cancel")
	}
	if err := pacing.Wait(ctx, m.policy.PostCancel, "post cancel"); err != nil {
		return fail(res, domain.StepStaleOrderCancel, err)
	}

	// PlanQuotes: height is re-read because the cancel took blocks.
	res.Reached = domain.StepPlanQuotes
	height, hasHeight = m.reader.GetCurrentHeight(ctx)
	res.Snapshot.Height, res.Snapshot.HasHeight = height, hasHeight
	plan, err := quote.Plan(res.Snapshot, quote.Params{
		TickSize:        m.cfg.TickSize,
		BaseSize:        m.cfg.BaseSize,
		LookaheadBlocks: m.cfg.LookaheadBlocks,
	})
	if err != nil {
		return fail(res, domain.StepPlanQuotes, err)
	}
	res.Plan = &plan
	if !plan.OnTickGrid() {
		log.Warn("lifecycle: quote prices off tick grid",
			"reference", plan.Reference, "tick", plan.TickSize)
	}
	log.Info("lifecycle: quote plan",
		"bid", plan.Bid.Label(), "ask", plan.Ask.Label(), "crossing", plan.Crossing.Label(),
		"size", plan.Size, "goodTilBlock", plan.GoodTilBlock)

	// SubmitBid → SubmitAsk → SubmitCrossing, strictly in order.
	orders := quote.Orders(plan, m.maker, m.taker)
	legs := [...]struct {
		step domain.Step
		leg  domain.Leg
	}{
		{domain.StepSubmitBid, domain.LegBid},
		{domain.StepSubmitAsk, domain.LegAsk},
		{domain.StepSubmitCrossing, domain.LegCrossing},
	}
	for i, l := range legs {
		res.Reached = l.step
		res.Outcomes = append(res.Outcomes, m.Submit(ctx, l.leg, orders[i]))
		if err := pacing.Wait(ctx, m.policy.SubmitPacing, "submit pacing"); err != nil {
			return fail(res, l.step, err)
		}
	}

	// VerifyOutcomes: observational only.
	res.Reached = domain.StepVerifyOutcomes
	m.logDocument(log, "orderbook", m.reader.GetOrderbook(ctx, marketID))
	m.logDocument(log, "fills", m.reader.GetFills(ctx, marketID))
	m.logDocument(log, "open orders after", m.reader.GetOpenOrders(ctx, marketID))

	res.Reached = domain.StepDone
	return res
}

// Submit places one order and resolves its outcome. A structured response is
// the outcome; a bare txhash is resolved after the settle window. Never fails.
func (m *Manager) Submit(ctx context.Context, leg domain.Leg, req domain.OrderRequest) domain.OrderOutcome {
	log := slog.With("market", req.MarketID, "leg", string(leg))
	out := domain.OrderOutcome{Leg: leg}

	log.Info("lifecycle: submitting order",
		"owner", req.Owner.Name, "side", req.Side.String(), "flag", req.Flag,
		"price", req.Price.Label(), "size", req.Size, "goodTilBlock", req.GoodTilBlock)

	sub, err := m.exec.PlaceOrder(ctx, req)
	if err != nil {
		out.Err = err
		if domain.KindOf(err) == domain.KindParseFailure {
			out.Status = domain.OutcomeUnknown
			log.Warn("lifecycle: order response not understood", "err", err)
		} else {
			out.Status = domain.OutcomeFailed
			log.Warn("lifecycle: order submission failed", "kind", domain.KindOf(err).String(), "err", err)
		}
		return out
	}

	tx := sub.Outcome
	if sub.Stage == domain.StageTextHash {
		tx = m.reader.GetTransactionOutcome(ctx, sub.TxHash)
		if tx == nil {
			out.Status = domain.OutcomeUnknown
			out.Err = fmt.Errorf("lifecycle.Submit %s: tx %s could not be resolved", leg, sub.TxHash)
			log.Warn("lifecycle: order outcome unknown", "txhash", sub.TxHash)
			return out
		}
	}
	if tx == nil {
		out.Status = domain.OutcomeUnknown
		return out
	}

	out.Tx = tx
	if tx.OK() {
		out.Status = domain.OutcomeConfirmed
		log.Info("lifecycle: order accepted", "txhash", tx.Hash, "decoder", sub.Stage.String())
	} else {
		out.Status = domain.OutcomeRejected
		log.Warn("lifecycle: order rejected", "txhash", tx.Hash, "code", tx.Code, "raw_log", tx.RawLog)
	}
	return out
}

// cancelStale cancels whatever occupies the quote slot. The cancel's own
// expiry is the current height.
func (m *Manager) cancelStale(ctx context.Context, log *slog.Logger, marketID string, height uint64) bool {
	err := m.exec.CancelOrder(ctx, domain.CancelRequest{
		Owner:        m.maker,
		MarketID:     marketID,
		Flags:        domain.SlotQuote,
		OrderNumber:  staleOrderNumber,
		GoodTilBlock: height,
	})
	if err != nil {
		log.Warn("lifecycle: stale order cancel failed, continuing", "err", err)
		return false
	}
	log.Info("lifecycle: stale order cancel submitted", "goodTilBlock", height)
	return true
}

func (m *Manager) logDocument(log *slog.Logger, what string, doc domain.Document) {
	if doc == nil {
		return
	}
	log.Info("lifecycle: "+what, "entries", doc.Entries(), "raw", doc.Compact(300))
}

func fail(res domain.MarketResult, step domain.Step, err error) domain.MarketResult {
	res.Failed = true
	res.FailedAt = step
	res.Err = err
	return res
}
