package engine_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/devnetmm/internal/application/engine"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "short", engine.TruncateStr("short", 10))
	assert.Equal(t, "abcdefg...", engine.TruncateStr("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", engine.TruncateStr("abcdef", 2))
}

func TestMarketRunnerFunc(t *testing.T) {
	var r engine.MarketRunner = engine.MarketRunnerFunc(func(_ context.Context, id string) domain.MarketResult {
		return domain.MarketResult{MarketID: id, Reached: domain.StepDone}
	})
	res := r.RunMarket(context.Background(), "7")
	assert.Equal(t, "7", res.MarketID)
	assert.True(t, res.OK())
}
