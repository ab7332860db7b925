package ports

import (
	"context"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// OrderExecutor places and cancels orders on the devnet CLOB.
type OrderExecutor interface {
	// PlaceOrder submits a limit order and decodes the immediate response:
	// structured JSON or a plain-text txhash that must be resolved later.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Submission, error)

	// CancelOrder cancels the order occupying req.OrderNumber.
	CancelOrder(ctx context.Context, req domain.CancelRequest) error
}

// Keyring manages the local trading identities.
type Keyring interface {
	// ListIdentities returns the names of the keys already in the keyring.
	ListIdentities(ctx context.Context) ([]string, error)

	// RecoverIdentity imports a key from its recovery phrase.
	// The phrase travels through stdin, never as an argument.
	RecoverIdentity(ctx context.Context, name, mnemonic string) error
}

// Funding moves collateral into trading subaccounts.
type Funding interface {
	DepositToSubaccount(ctx context.Context, id domain.TradingIdentity, quantums uint64) error
	EnableMargin(ctx context.Context, id domain.TradingIdentity) error
}
