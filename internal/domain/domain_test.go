package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_Label(t *testing.T) {
	assert.Equal(t, "10050000 ($10.05)", domain.Price(10_050_000).Label())
	assert.Equal(t, "20000 ($0.02)", domain.Price(20_000).Label())
}

func TestParsePrice(t *testing.T) {
	p, err := domain.ParsePrice("10050000")
	require.NoError(t, err)
	assert.Equal(t, domain.Price(10_050_000), p)

	p, err = domain.ParsePrice("10000000.0")
	require.NoError(t, err)
	assert.Equal(t, domain.Price(10_000_000), p)

	for _, bad := range []string{"", "abc", "10.5", "0", "-5"} {
		_, err := domain.ParsePrice(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", bad)
	}
}

func TestPriceTable_For(t *testing.T) {
	table := domain.PriceTable{
		Defaults: map[string]domain.Price{"0": 10_000_000},
		Fallback: 20_000,
	}
	assert.Equal(t, domain.Price(10_000_000), table.For("0"))
	assert.Equal(t, domain.Price(20_000), table.For("7"))
}

func TestCommand_Name(t *testing.T) {
	cases := map[string][]string{
		"status":                           {"status", "--node", "x"},
		"keys list":                        {"keys", "list", "--keyring-backend", "test"},
		"keys add":                         {"keys", "add", "bob", "--recover"},
		"q tx":                             {"q", "tx", "ABCDEF", "--output", "json"},
		"q prices market-price":            {"q", "prices", "market-price", "0"},
		"tx clob place-order":              {"tx", "clob", "place-order", "dydx1", "0"},
		"tx sending deposit-to-subaccount": {"tx", "sending", "deposit-to-subaccount", "bob"},
	}
	for want, args := range cases {
		assert.Equal(t, want, domain.Command{Args: args}.Name())
	}
	assert.Equal(t, "", domain.Command{}.Name())
}

func TestGatewayError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &domain.GatewayError{
		Kind:     domain.KindCommandFailed,
		Command:  "tx clob cancel-order",
		ExitCode: 1,
		Stderr:   "account sequence mismatch",
	})

	assert.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.NotErrorIs(t, err, domain.ErrParseFailure)
	assert.Equal(t, domain.KindCommandFailed, domain.KindOf(err))
	assert.Contains(t, err.Error(), "exit 1")
	assert.Contains(t, err.Error(), "account sequence mismatch")

	spawn := &domain.GatewayError{Kind: domain.KindUnavailable, Command: "status", Spawn: true}
	assert.ErrorIs(t, spawn, domain.ErrSpawnFailed)
	assert.ErrorIs(t, spawn, domain.ErrUnavailable)

	assert.Equal(t, domain.KindSuccess, domain.KindOf(nil))
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(errors.New("boom")))
}

func TestDocument_Entries(t *testing.T) {
	assert.Equal(t, 3, domain.Document(`[1,2,3]`).Entries())
	assert.Equal(t, 3, domain.Document(`{"bids":[{},{}],"asks":[{}],"height":"5"}`).Entries())
	assert.Equal(t, -1, domain.Document(`{"height":"5"}`).Entries())
	assert.Equal(t, -1, domain.Document(`not json`).Entries())
}

func TestDocument_Compact(t *testing.T) {
	d := domain.Document("{\n  \"a\": 1\n}")
	assert.Equal(t, `{"a":1}`, d.Compact(100))
	assert.Equal(t, "{...", domain.Document(`{"abcdef":1}`).Compact(4))
	assert.Equal(t, "{\"", domain.Document(`{"abcdef":1}`).Compact(2))
	assert.Equal(t, "", domain.Document(`{"abcdef":1}`).Compact(0))
}

func TestQuotePlan_OnTickGrid(t *testing.T) {
	p := domain.QuotePlan{TickSize: 100_000, Bid: 9_800_000, Ask: 10_200_000, Crossing: 9_800_000}
	assert.True(t, p.OnTickGrid())
	assert.Equal(t, domain.Price(400_000), p.Spread())

	p.Bid = 9_850_000
	assert.False(t, p.OnTickGrid())
}

func TestCycleResult_Passed(t *testing.T) {
	c := domain.CycleResult{Markets: []domain.MarketResult{
		{MarketID: "0", Reached: domain.StepDone},
		{MarketID: "1", Reached: domain.StepPlanQuotes, Failed: true, FailedAt: domain.StepPlanQuotes},
	}}
	assert.Equal(t, 1, c.Passed())
	assert.Equal(t, domain.OutcomeSkipped, c.Markets[1].Outcome(domain.LegBid).Status)
	assert.Equal(t, "plan_quotes", domain.StepPlanQuotes.String())
}
