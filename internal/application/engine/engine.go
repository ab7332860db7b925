package engine

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// MarketRunner es la interfaz mínima que el scheduler necesita del lifecycle.
// Desacopla el loop de ciclos de *lifecycle.Manager concreto.
type MarketRunner interface {
	// RunMarket ejecuta una iteración completa sobre el mercado. Nunca devuelve
	// error: los fallos quedan en MarketResult.Failed y MarketResult.Err.
	RunMarket(ctx context.Context, marketID string) domain.MarketResult
}

// MarketRunnerFunc adapta una función a MarketRunner.
type MarketRunnerFunc func(ctx context.Context, marketID string) domain.MarketResult

// RunMarket implementa MarketRunner.
func (f MarketRunnerFunc) RunMarket(ctx context.Context, marketID string) domain.MarketResult {
	return f(ctx, marketID)
}

// TruncateStr trunca un string a maxLen caracteres añadiendo "..." si es necesario.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
