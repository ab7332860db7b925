package dydx_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/adapters/dydx"
	"github.com/alejandrodnm/devnetmm/internal/adapters/dydx/dydxtest"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ex *dydxtest.Exchange) *dydx.Client {
	prices := domain.PriceTable{
		Defaults: map[string]domain.Price{"0": 10_000_000, "1": 10_000_000},
	}
	return dydx.NewClient(ex, dydx.NewCommands(testChain), prices, 0)
}

func TestGetReferencePrice_Success(t *testing.T) {
	ex := dydxtest.New()
	c := newTestClient(ex)

	p, isDefault := c.GetReferencePrice(context.Background(), "0")
	assert.False(t, isDefault)
	assert.Equal(t, domain.Price(10_050_000), p)
}

func TestGetReferencePrice_WrappedFormat(t *testing.T) {
	ex := dydxtest.New()
	ex.Responses["q prices market-price"] = domain.RawResult{
		Stdout: `{"market_price":{"id":1,"exponent":-6,"price":"3000000000"}}`,
	}
	c := newTestClient(ex)

	p, isDefault := c.GetReferencePrice(context.Background(), "1")
	assert.False(t, isDefault)
	assert.Equal(t, domain.Price(3_000_000_000), p)
}

func TestGetReferencePrice_FallsBackToDefault(t *testing.T) {
	ex := dydxtest.New()
	ex.Fail["q prices market-price"] = true
	c := newTestClient(ex)

	p, isDefault := c.GetReferencePrice(context.Background(), "0")
	assert.True(t, isDefault)
	assert.Equal(t, domain.Price(10_000_000), p, "default del mercado 0 = $10.00")

	p, isDefault = c.GetReferencePrice(context.Background(), "42")
	assert.True(t, isDefault)
	assert.Equal(t, domain.Price(20_000), p, "mercado sin default usa el fallback")
}

func TestGetReferencePrice_MalformedFallsBack(t *testing.T) {
	for name, stdout := range map[string]string{
		"not json": "Error: rpc error",
		"no price": `{"foo":"bar"}`,
		"fraction": `{"price":"10.5"}`,
		"negative": `{"price":"-1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			ex := dydxtest.New()
			ex.Responses["q prices market-price"] = domain.RawResult{Stdout: stdout}
			p, isDefault := newTestClient(ex).GetReferencePrice(context.Background(), "1")
			assert.True(t, isDefault)
			assert.Equal(t, domain.Price(10_000_000), p)
		})
	}
}

func TestGetCurrentHeight(t *testing.T) {
	ex := dydxtest.New()
	ex.Height = 4242
	c := newTestClient(ex)

	h, ok := c.GetCurrentHeight(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(4242), h)
}

func TestGetCurrentHeight_NewStatusFormat(t *testing.T) {
	ex := dydxtest.New()
	ex.Responses["status"] = domain.RawResult{Stdout: `{"SyncInfo":{"latest_block_height":"77"}}`}

	h, ok := newTestClient(ex).GetCurrentHeight(context.Background())
	require.True(t, ok)
	assert.Equal(t, uint64(77), h)
}

func TestGetCurrentHeight_UnavailableHasNoDefault(t *testing.T) {
	ex := dydxtest.New()
	ex.Fail["status"] = true
	h, ok := newTestClient(ex).GetCurrentHeight(context.Background())
	assert.False(t, ok)
	assert.Zero(t, h)

	ex = dydxtest.New()
	ex.Responses["status"] = domain.RawResult{Stdout: `{"node_info":{}}`}
	_, ok = newTestClient(ex).GetCurrentHeight(context.Background())
	assert.False(t, ok)
}

func TestGetTransactionOutcome(t *testing.T) {
	ex := dydxtest.New()
	ex.TxCode = 11
	ex.TxRawLog = "out of gas"
	c := newTestClient(ex)

	sub, err := c.PlaceOrder(context.Background(), domain.OrderRequest{Owner: bob, MarketID: "0", Price: 1})
	require.NoError(t, err)

	out := c.GetTransactionOutcome(context.Background(), sub.TxHash)
	require.NotNil(t, out)
	assert.Equal(t, sub.TxHash, out.Hash)
	assert.Equal(t, uint32(11), out.Code)
	assert.Equal(t, "out of gas", out.RawLog)
	assert.False(t, out.OK())

	assert.Nil(t, c.GetTransactionOutcome(context.Background(), "DEADBEEF"))
}

func TestGetTransactionOutcome_WaitsSettleWindow(t *testing.T) {
	ex := dydxtest.New()
	c := dydx.NewClient(ex, dydx.NewCommands(testChain), domain.PriceTable{}, 30*time.Millisecond)

	start := time.Now()
	c.GetTransactionOutcome(context.Background(), "ABC")
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := ex.CallsTo("q tx")
	assert.Nil(t, c.GetTransactionOutcome(ctx, "ABC"))
	assert.Equal(t, before, ex.CallsTo("q tx"), "no consulta si la espera se cancela")
}

func TestObservationalQueries(t *testing.T) {
	ex := dydxtest.New()
	c := newTestClient(ex)
	ctx := context.Background()

	_, err := c.PlaceOrder(ctx, domain.OrderRequest{
		Owner: bob, MarketID: "0", Side: domain.SideBuy, Size: 10, Price: 9_850_000, GoodTilBlock: 110,
	})
	require.NoError(t, err)
	_, err = c.PlaceOrder(ctx, domain.OrderRequest{
		Owner: alice, MarketID: "0", Side: domain.SideSell, Size: 10, Price: 9_850_000, GoodTilBlock: 110,
	})
	require.NoError(t, err)

	book := c.GetOrderbook(ctx, "0")
	require.NotNil(t, book)
	assert.Equal(t, 2, book.Entries())

	fills := c.GetFills(ctx, "0")
	require.NotNil(t, fills)
	assert.Equal(t, 1, fills.Entries())

	assert.Equal(t, 2, c.GetOpenOrders(ctx, "0").Entries())

	ex.Fail["q clob fills"] = true
	assert.Nil(t, c.GetFills(ctx, "0"))
}

func TestGetSubaccountBalance(t *testing.T) {
	ex := dydxtest.New()
	ex.Responses["q subaccounts list-subaccount"] = domain.RawResult{Stdout: `{
		"subaccount": [
			{"id": {"owner": "dydx10fx7sy6ywd5senxae9dwytf8jxek3t2gcen2vs", "number": 0},
			 "asset_positions": [{"asset_id": 0, "quantums": "100000000000"}, {"asset_id": 1, "quantums": "5"}]},
			{"id": {"owner": "dydx10fx7sy6ywd5senxae9dwytf8jxek3t2gcen2vs", "number": 1},
			 "asset_positions": [{"quantums": "250"}]},
			{"id": {"owner": "dydx199tqg4wdlnu4qjlxchpd7seg454937hjrknju4", "number": 0},
			 "asset_positions": [{"asset_id": 0, "quantums": "999"}]}
		]}`}
	c := newTestClient(ex)

	total, ok := c.GetSubaccountBalance(context.Background(), bob.Address)
	require.True(t, ok)
	assert.Equal(t, int64(100_000_000_250), total)

	ex.Fail["q subaccounts list-subaccount"] = true
	_, ok = c.GetSubaccountBalance(context.Background(), bob.Address)
	assert.False(t, ok)
}

func TestGetAccountBalance(t *testing.T) {
	c := newTestClient(dydxtest.New())

	coins, ok := c.GetAccountBalance(context.Background(), bob.Address)
	require.True(t, ok)
	require.Len(t, coins, 1)
	assert.Equal(t, "adv4tnt", coins[0].Denom)
}
