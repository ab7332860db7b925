package ports

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// Notifier presenta el resultado de cada ciclo al operador.
type Notifier interface {
	// Notify muestra el resumen por mercado del ciclo.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, cycle domain.CycleResult) error
}
