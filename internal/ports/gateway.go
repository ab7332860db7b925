package ports

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// Gateway invoca el CLI del exchange (request/response síncrono).
// El transporte (proceso, HTTP, fake en memoria) queda oculto detrás de esta interfaz.
// No reintenta: la política de reintentos pertenece a los callers.
type Gateway interface {
	// Execute corre el comando y devuelve la salida cruda.
	// Exit code != 0 se devuelve como *domain.GatewayError con KindCommandFailed
	// junto con el RawResult poblado.
	Execute(ctx context.Context, cmd domain.Command) (domain.RawResult, error)
}
