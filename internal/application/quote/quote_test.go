package quote_test

import (
	"testing"

	"github.com/alejandrodnm/devnetmm/internal/application/quote"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultParams = quote.Params{TickSize: 100_000, BaseSize: 20_000_000_000, LookaheadBlocks: 10}

func snapshot(price domain.Price, height uint64) domain.MarketSnapshot {
	return domain.MarketSnapshot{MarketID: "0", ReferencePrice: price, Height: height, HasHeight: true}
}

func TestPlan_SampleScenario(t *testing.T) {
	plan, err := quote.Plan(snapshot(10_050_000, 1234), defaultParams)

	require.NoError(t, err)
	assert.Equal(t, domain.Price(9_850_000), plan.Bid)
	assert.Equal(t, domain.Price(10_250_000), plan.Ask)
	assert.Equal(t, domain.Price(9_850_000), plan.Crossing)
	assert.Equal(t, uint64(1244), plan.GoodTilBlock)
	assert.Equal(t, uint64(20_000_000_000), plan.Size)
	assert.Equal(t, "0", plan.MarketID)
}

func TestPlan_Determinism(t *testing.T) {
	for _, tick := range []domain.Price{1, 5, 100, 100_000, 1_000_000} {
		for _, mult := range []domain.Price{3, 10, 101, 5_000} {
			ref := tick * mult
			a, err := quote.Plan(snapshot(ref, 50), quote.Params{TickSize: tick, BaseSize: 1, LookaheadBlocks: 10})
			require.NoError(t, err)
			b, _ := quote.Plan(snapshot(ref, 50), quote.Params{TickSize: tick, BaseSize: 1, LookaheadBlocks: 10})

			assert.Equal(t, a, b, "mismo input, mismo plan")
			assert.Equal(t, 4*tick, a.Ask-a.Bid, "ref=%d tick=%d", ref, tick)
			assert.Equal(t, a.Bid, a.Crossing)
			assert.True(t, a.OnTickGrid(), "ref=%d tick=%d", ref, tick)
		}
	}
}

func TestPlan_DefaultPriceOnGrid(t *testing.T) {
	plan, err := quote.Plan(snapshot(10_000_000, 7), defaultParams)
	require.NoError(t, err)
	assert.Equal(t, domain.Price(9_800_000), plan.Bid)
	assert.Equal(t, domain.Price(10_200_000), plan.Ask)
	assert.True(t, plan.OnTickGrid())
}

func TestPlan_MissingHeight(t *testing.T) {
	snap := snapshot(10_000_000, 0)
	snap.HasHeight = false

	_, err := quote.Plan(snap, defaultParams)
	assert.ErrorIs(t, err, domain.ErrHeightUnavailable)
}

func TestPlan_InvalidInput(t *testing.T) {
	cases := map[string]struct {
		price  domain.Price
		params quote.Params
	}{
		"zero price":    {0, defaultParams},
		"negative":      {-10, defaultParams},
		"zero tick":     {10_000_000, quote.Params{TickSize: 0, BaseSize: 1}},
		"zero size":     {10_000_000, quote.Params{TickSize: 1}},
		"bid below one": {200_000, defaultParams},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := quote.Plan(snapshot(tc.price, 1), tc.params)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestOrders(t *testing.T) {
	maker := domain.TradingIdentity{Name: "bob", Address: "dydx1bob"}
	taker := domain.TradingIdentity{Name: "alice", Address: "dydx1alice"}
	plan, err := quote.Plan(snapshot(10_050_000, 100), defaultParams)
	require.NoError(t, err)

	orders := quote.Orders(plan, maker, taker)

	bid, ask, cross := orders[0], orders[1], orders[2]
	assert.Equal(t, maker, bid.Owner)
	assert.Equal(t, domain.SideBuy, bid.Side)
	assert.Equal(t, domain.SlotQuote, bid.Flag)

	assert.Equal(t, taker, ask.Owner)
	assert.Equal(t, domain.SideSell, ask.Side)
	assert.Equal(t, domain.Price(10_250_000), ask.Price)

	assert.Equal(t, taker, cross.Owner)
	assert.Equal(t, domain.SideSell, cross.Side)
	assert.Equal(t, domain.SlotCrossing, cross.Flag)
	assert.Equal(t, bid.Price, cross.Price, "el cruce matchea el bid")

	for _, o := range orders {
		assert.Equal(t, domain.OrderClassLimit, o.Class)
		assert.Equal(t, uint64(110), o.GoodTilBlock)
	}
}
