package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores sentinela. Los callers distinguen políticas con errors.Is.
var (
	ErrCommandFailed     = errors.New("command failed")
	ErrSpawnFailed       = errors.New("spawn failed")
	ErrParseFailure      = errors.New("parse failure")
	ErrUnavailable       = errors.New("unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrHeightUnavailable = errors.New("block height unavailable")
	ErrIdentityRecovery  = errors.New("identity recovery failed")
	ErrCrashed           = errors.New("iteration crashed")
)

// ResultKind discrimina el resultado de una llamada al exchange.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindParseFailure
	KindCommandFailed
	KindUnavailable
)

// String implementa fmt.Stringer.
func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindParseFailure:
		return "parse_failure"
	case KindCommandFailed:
		return "command_failed"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// GatewayError describe un fallo al invocar el CLI del exchange.
// Spawn se reporta como KindUnavailable con Spawn=true.
type GatewayError struct {
	Kind     ResultKind
	Command  string // subcomando, p.ej. "q prices market-price"
	ExitCode int
	Stderr   string
	Spawn    bool
	Err      error
}

func (e *GatewayError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Command, e.Kind)
	if e.Kind == KindCommandFailed {
		fmt.Fprintf(&sb, " (exit %d)", e.ExitCode)
	}
	if e.Spawn {
		sb.WriteString(" (spawn)")
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&sb, ": %s", truncate(s, 200))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is mapea el Kind al error sentinela correspondiente.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrCommandFailed:
		return e.Kind == KindCommandFailed
	case ErrParseFailure:
		return e.Kind == KindParseFailure
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrSpawnFailed:
		return e.Spawn
	}
	return false
}

// KindOf clasifica cualquier error devuelto por el gateway.
func KindOf(err error) ResultKind {
	if err == nil {
		return KindSuccess
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	if errors.Is(err, ErrParseFailure) || errors.Is(err, ErrInvalidInput) {
		return KindParseFailure
	}
	if errors.Is(err, ErrCommandFailed) {
		return KindCommandFailed
	}
	return KindUnavailable
}

func wrapInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:max(maxLen, 0)]
	}
	return s[:maxLen-3] + "..."
}
