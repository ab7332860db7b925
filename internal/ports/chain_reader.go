package ports

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// ChainReader consulta el estado de la chain. Todas las operaciones son de
// sólo lectura y ninguna devuelve error: cada una aplica su propia política
// de degradación y loguea el fallo.
type ChainReader interface {
	// GetReferencePrice devuelve el precio del oráculo, o el default del mercado
	// si la query falla (isDefault=true).
	GetReferencePrice(ctx context.Context, marketID string) (price domain.Price, isDefault bool)

	// GetCurrentHeight devuelve la altura actual. ok=false si no está disponible;
	// no existe un default seguro.
	GetCurrentHeight(ctx context.Context) (height uint64, ok bool)

	// GetOpenOrders, GetOrderbook y GetFills son best-effort: nil si fallan.
	GetOpenOrders(ctx context.Context, marketID string) domain.Document
	GetOrderbook(ctx context.Context, marketID string) domain.Document
	GetFills(ctx context.Context, marketID string) domain.Document

	// GetSubaccountBalance suma los quantums de USDC de todos los subaccounts del owner.
	GetSubaccountBalance(ctx context.Context, owner string) (quantums int64, ok bool)

	// GetAccountBalance devuelve los balances bancarios de la dirección.
	GetAccountBalance(ctx context.Context, address string) ([]domain.Coin, bool)

	// GetTransactionOutcome espera la ventana de settle y consulta la tx.
	// nil si la query falla.
	GetTransactionOutcome(ctx context.Context, hash string) *domain.TransactionOutcome
}
