// Package quote calcula los precios de cada ciclo a partir del precio de referencia.
//
// Es una función pura: sin I/O, determinista. El spread es fijo (±2 ticks) y la
// orden de cruce se pone al precio del bid para garantizar un fill observable.
package quote

import (
	"fmt"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// TicksFromReference es la distancia de bid y ask a la referencia, en ticks.
const TicksFromReference = 2

// Params son los parámetros fijos del plan.
type Params struct {
	TickSize        domain.Price
	BaseSize        uint64 // quantums
	LookaheadBlocks uint64
}

// Plan deriva un QuotePlan del snapshot.
//
//	bid      = ref - 2*tick
//	ask      = ref + 2*tick
//	crossing = bid
//	expiry   = height + lookahead
//
// Devuelve domain.ErrHeightUnavailable si el snapshot no tiene altura, y
// domain.ErrInvalidInput si el precio o el tick no son positivos.
func Plan(snap domain.MarketSnapshot, p Params) (domain.QuotePlan, error) {
	if !snap.HasHeight {
		return domain.QuotePlan{}, fmt.Errorf("quote.Plan market %s: %w", snap.MarketID, domain.ErrHeightUnavailable)
	}
	if p.TickSize <= 0 {
		return domain.QuotePlan{}, fmt.Errorf("quote.Plan: %w: tick size %d", domain.ErrInvalidInput, p.TickSize)
	}
	if snap.ReferencePrice <= 0 {
		return domain.QuotePlan{}, fmt.Errorf("quote.Plan: %w: reference price %d", domain.ErrInvalidInput, snap.ReferencePrice)
	}
	if p.BaseSize == 0 {
		return domain.QuotePlan{}, fmt.Errorf("quote.Plan: %w: zero order size", domain.ErrInvalidInput)
	}

	offset := TicksFromReference * p.TickSize
	bid := snap.ReferencePrice - offset
	if bid <= 0 {
		return domain.QuotePlan{}, fmt.Errorf("quote.Plan: %w: reference %d too close to zero for tick %d",
			domain.ErrInvalidInput, snap.ReferencePrice, p.TickSize)
	}

	return domain.QuotePlan{
		MarketID:     snap.MarketID,
		TickSize:     p.TickSize,
		Reference:    snap.ReferencePrice,
		Bid:          bid,
		Ask:          snap.ReferencePrice + offset,
		Crossing:     bid,
		Size:         p.BaseSize,
		GoodTilBlock: snap.Height + p.LookaheadBlocks,
	}, nil
}

// Orders arma las tres órdenes del plan: bid del maker, ask y cruce del taker.
// El cruce usa el slot SlotCrossing para no reemplazar el ask.
func Orders(plan domain.QuotePlan, maker, taker domain.TradingIdentity) [3]domain.OrderRequest {
	base := domain.OrderRequest{
		MarketID:     plan.MarketID,
		Flag:         domain.SlotQuote,
		Class:        domain.OrderClassLimit,
		Size:         plan.Size,
		GoodTilBlock: plan.GoodTilBlock,
	}

	bid := base
	bid.Owner = maker
	bid.Side = domain.SideBuy
	bid.Price = plan.Bid

	ask := base
	ask.Owner = taker
	ask.Side = domain.SideSell
	ask.Price = plan.Ask

	cross := base
	cross.Owner = taker
	cross.Flag = domain.SlotCrossing
	cross.Side = domain.SideSell
	cross.Price = plan.Crossing

	return [3]domain.OrderRequest{bid, ask, cross}
}
