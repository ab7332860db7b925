// Package scheduler repite el lifecycle sobre todos los mercados hasta que el
// contexto se cancela. Ningún fallo de un mercado o de un ciclo termina el proceso.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/application/engine"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/pacing"
	"github.com/alejandrodnm/devnetmm/internal/ports"
	"github.com/google/uuid"
)

// Scheduler ejecuta ciclos: una pasada secuencial por cada mercado configurado.
type Scheduler struct {
	markets  []string
	runner   engine.MarketRunner
	notifier ports.Notifier
	journal  ports.Journal // opcional
	policy   pacing.Policy

	// MaxCycles > 0 detiene el loop tras esa cantidad de ciclos (-once usa 1).
	MaxCycles int
}

// New crea un Scheduler. notifier y journal pueden ser nil.
func New(markets []string, runner engine.MarketRunner, notifier ports.Notifier, journal ports.Journal, policy pacing.Policy) *Scheduler {
	return &Scheduler{
		markets:  markets,
		runner:   runner,
		notifier: notifier,
		journal:  journal,
		policy:   policy,
	}
}

// Run ejecuta ciclos hasta que ctx se cancela o se alcanza MaxCycles.
// Tras un ciclo con error espera ErrorBackoff; si no, BetweenCycles.
// Sólo devuelve nil (MaxCycles alcanzado o ctx cancelado).
func (s *Scheduler) Run(ctx context.Context) error {
	for n := 1; ; n++ {
		if ctx.Err() != nil {
			slog.Info("scheduler: stopping", "cycles", n-1)
			return nil
		}

		cycle := s.safeCycle(ctx, n)

		if s.MaxCycles > 0 && n >= s.MaxCycles {
			slog.Info("scheduler: max cycles reached", "cycles", n)
			return nil
		}

		wait, reason := s.policy.BetweenCycles, "between cycles"
		if cycle.Err != nil && !errors.Is(cycle.Err, context.Canceled) {
			wait, reason = s.policy.ErrorBackoff, "error backoff"
			slog.Warn("scheduler: cycle error, backing off", "cycle", cycle.ID, "backoff", wait, "err", cycle.Err)
		}
		if err := pacing.Wait(ctx, wait, reason); err != nil {
			slog.Info("scheduler: stopping", "cycles", n)
			return nil
		}
	}
}

// RunCycle ejecuta una pasada por todos los mercados. Un mercado que termina
// con domain.ErrCrashed marca el ciclo con error y el resto de mercados sigue.
func (s *Scheduler) RunCycle(ctx context.Context, number int) domain.CycleResult {
	cycle := domain.CycleResult{
		ID:        uuid.NewString(),
		Number:    number,
		StartedAt: time.Now(),
	}
	log := slog.With("cycle", cycle.ID, "n", number)
	log.Info("scheduler: cycle start", "markets", len(s.markets))

	for i, marketID := range s.markets {
		res := s.runMarket(ctx, marketID)
		if errors.Is(res.Err, domain.ErrCrashed) {
			log.Error("scheduler: market iteration crashed", "market", marketID, "step", res.FailedAt.String(), "err", res.Err)
			cycle.Err = errors.Join(cycle.Err, res.Err)
		}
		cycle.Markets = append(cycle.Markets, res)

		if i < len(s.markets)-1 {
			if err := pacing.Wait(ctx, s.policy.BetweenMarkets, "between markets"); err != nil {
				cycle.Err = errors.Join(cycle.Err, err)
				break
			}
		}
	}

	cycle.FinishedAt = time.Now()
	log.Info("scheduler: cycle end",
		"passed", cycle.Passed(), "markets", len(cycle.Markets),
		"elapsed", cycle.Duration().Round(time.Millisecond))

	if err := s.report(ctx, cycle); err != nil {
		log.Error("scheduler: cycle report crashed", "err", err)
		cycle.Err = errors.Join(cycle.Err, err)
	}
	return cycle
}

// safeCycle es la última red del loop: un panic en cualquier punto de
// RunCycle se convierte en un ciclo con error y aplica el backoff.
func (s *Scheduler) safeCycle(ctx context.Context, number int) (cycle domain.CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler: cycle crashed", "n", number, "panic", r, "stack", string(debug.Stack()))
			cycle.Number = number
			if cycle.ID == "" {
				cycle.ID = uuid.NewString()
			}
			cycle.Err = errors.Join(cycle.Err, fmt.Errorf("%w: cycle %d: panic: %v", domain.ErrCrashed, number, r))
		}
	}()
	return s.RunCycle(ctx, number)
}

// runMarket protege el ciclo de un runner que hace panic. Un runner que no
// publica su progreso queda registrado como fallido en StepStart.
func (s *Scheduler) runMarket(ctx context.Context, marketID string) (res domain.MarketResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("scheduler: recovered panic", "stack", string(debug.Stack()))
			res = domain.MarketResult{
				MarketID: marketID,
				Reached:  domain.StepStart,
				Failed:   true,
				FailedAt: domain.StepStart,
				Err:      fmt.Errorf("%w: scheduler.runMarket %s: panic: %v", domain.ErrCrashed, marketID, r),
			}
		}
	}()
	return s.runner.RunMarket(ctx, marketID)
}

// report entrega el ciclo al notifier y al journal. Sus errores sólo se
// loguean; un panic de cualquiera de los dos se devuelve como ErrCrashed.
func (s *Scheduler) report(ctx context.Context, cycle domain.CycleResult) error {
	// El reporte no debe perderse por un ctx ya cancelado en el shutdown.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	if s.notifier != nil {
		errs = append(errs, deliver(cycle, "notify", func() error { return s.notifier.Notify(ctx, cycle) }))
	}
	if s.journal != nil {
		errs = append(errs, deliver(cycle, "journal write", func() error { return s.journal.RecordCycle(ctx, cycle) }))
	}
	return errors.Join(errs...)
}

func deliver(cycle domain.CycleResult, what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s cycle %d: panic: %v", domain.ErrCrashed, what, cycle.Number, r)
		}
	}()
	if err := fn(); err != nil {
		slog.Warn("scheduler: "+what+" failed", "cycle", cycle.ID, "err", err)
	}
	return nil
}
