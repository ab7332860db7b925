package ports

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// Journal registra los ciclos para auditoría. Es opcional y de sólo escritura
// desde el loop: nada de lo guardado condiciona ciclos posteriores.
type Journal interface {
	// RecordCycle persiste el resumen del ciclo y una fila por mercado.
	RecordCycle(ctx context.Context, cycle domain.CycleResult) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
