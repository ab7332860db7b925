package dydx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBinary = "dydxprotocold"

	// Un devnet local aguanta bien unos pocos procesos por segundo; el límite
	// evita ráfagas de spawns si varios pasos fallan en cascada.
	defaultRatePerSec = 5
	defaultBurst      = 5
	defaultTimeout    = 30 * time.Second
)

// RunnerConfig configura el Runner.
type RunnerConfig struct {
	Binary     string
	RatePerSec float64
	Burst      int
	Timeout    time.Duration
}

// Runner implementa ports.Gateway lanzando un proceso por llamada.
type Runner struct {
	binary  string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewRunner crea un Runner. Los campos vacíos toman los defaults del devnet.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Runner{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
	}
}

// Execute corre el binario con los argumentos del comando.
// No reintenta: exit != 0 → KindCommandFailed, spawn/timeout → KindUnavailable.
func (r *Runner) Execute(ctx context.Context, cmd domain.Command) (domain.RawResult, error) {
	name := cmd.Name()
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.RawResult{}, &domain.GatewayError{
			Kind: domain.KindUnavailable, Command: name, Err: fmt.Errorf("rate limiter: %w", err),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, r.binary, cmd.Args...)
	c.WaitDelay = time.Second // hijos huérfanos no deben retener los pipes
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	start := time.Now()
	err := c.Run()
	res := domain.RawResult{Stdout: stdout.String(), Stderr: stderr.String()}

	slog.Debug("gateway: exec",
		"cmd", name,
		"duration", time.Since(start).Round(time.Millisecond),
		"err", err,
	)

	if err == nil {
		return res, nil
	}
	if runCtx.Err() != nil {
		return res, &domain.GatewayError{Kind: domain.KindUnavailable, Command: name, Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &domain.GatewayError{
			Kind:     domain.KindCommandFailed,
			Command:  name,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	return res, &domain.GatewayError{Kind: domain.KindUnavailable, Command: name, Spawn: true, Err: err}
}
