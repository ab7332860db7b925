// Package pacing nombra las esperas entre operaciones dependientes de la chain.
//
// Cada espera está atada a su motivo (settle de una tx, espaciado entre órdenes,
// backoff tras un error) para que la dependencia del tiempo de finalidad quede
// explícita y se pueda ajustar por configuración.
package pacing

import (
	"context"
	"log/slog"
	"time"
)

// Policy agrupa todas las esperas del sistema.
type Policy struct {
	SettleWindow   time.Duration // tx enviada → query de la tx
	SubmitPacing   time.Duration // entre bid, ask y cruce
	PostCancel     time.Duration // cancelación → planificación
	PostDeposit    time.Duration // depósito/margen → siguiente paso del bootstrap
	BetweenMarkets time.Duration
	BetweenCycles  time.Duration
	ErrorBackoff   time.Duration // tras un error escapado del ciclo
}

// DefaultPolicy reproduce los tiempos del devnet local (bloques de ~1s).
func DefaultPolicy() Policy {
	return Policy{
		SettleWindow:   3 * time.Second,
		SubmitPacing:   2 * time.Second,
		PostCancel:     5 * time.Second,
		PostDeposit:    2 * time.Second,
		BetweenMarkets: 10 * time.Second,
		BetweenCycles:  60 * time.Second,
		ErrorBackoff:   30 * time.Second,
	}
}

// Wait duerme d respetando el contexto. reason sólo se usa en el log de debug.
// Devuelve ctx.Err() si el contexto se cancela antes.
func Wait(ctx context.Context, d time.Duration, reason string) error {
	if d <= 0 {
		return ctx.Err()
	}
	slog.Debug("pacing: waiting", "reason", reason, "for", d)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
