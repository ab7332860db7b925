// Package provision prepara las identidades de trading antes del loop:
// keys en el keyring, colateral en el subaccount y margen habilitado.
//
// Sólo la recuperación de una key es fatal. Depósito y margen son best-effort:
// un fallo se loguea y aparece más tarde como órdenes rechazadas.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/pacing"
	"github.com/alejandrodnm/devnetmm/internal/ports"
	"github.com/shopspring/decimal"
)

// usdcDecimals es la escala de los quantums de USDC.
const usdcDecimals = 6

// Account es una identidad con su recovery phrase y el depósito que recibe.
type Account struct {
	Identity domain.TradingIdentity
	Mnemonic string
	Deposit  uint64 // quantums de USDC
}

// Provisioner ejecuta el bootstrap una sola vez al arrancar.
type Provisioner struct {
	keys    ports.Keyring
	funding ports.Funding
	reader  ports.ChainReader
	policy  pacing.Policy
}

// New crea un Provisioner.
func New(keys ports.Keyring, funding ports.Funding, reader ports.ChainReader, policy pacing.Policy) *Provisioner {
	return &Provisioner{keys: keys, funding: funding, reader: reader, policy: policy}
}

// EnsureIdentity importa la key sólo si no está ya en el keyring.
// Llamarla dos veces con el mismo nombre produce una única recuperación.
func (p *Provisioner) EnsureIdentity(ctx context.Context, name, mnemonic string) error {
	known, err := p.keys.ListIdentities(ctx)
	if err != nil {
		// Sin listado no sabemos si existe; intentamos recuperar igual.
		slog.Warn("provision: could not list identities", "err", err)
	}
	if slices.Contains(known, name) {
		slog.Info("provision: identity already present", "identity", name)
		return nil
	}

	if mnemonic == "" {
		return fmt.Errorf("provision.EnsureIdentity %s: %w: no recovery phrase configured", name, domain.ErrIdentityRecovery)
	}
	slog.Info("provision: recovering identity", "identity", name)
	if err := p.keys.RecoverIdentity(ctx, name, mnemonic); err != nil {
		return fmt.Errorf("provision.EnsureIdentity: %w", err)
	}
	return nil
}

// FundSubaccount deposita quantums en el subaccount de id. Best-effort.
func (p *Provisioner) FundSubaccount(ctx context.Context, id domain.TradingIdentity, quantums uint64) {
	if quantums == 0 {
		return
	}
	if err := p.funding.DepositToSubaccount(ctx, id, quantums); err != nil {
		slog.Warn("provision: deposit failed, continuing", "identity", id.Name, "quantums", quantums, "err", err)
	}
}

// EnableMargin habilita margen en el subaccount de id. Best-effort.
func (p *Provisioner) EnableMargin(ctx context.Context, id domain.TradingIdentity) {
	if err := p.funding.EnableMargin(ctx, id); err != nil {
		slog.Warn("provision: enable margin failed, continuing", "identity", id.Name, "err", err)
	}
}

// Bootstrap asegura todas las keys y después fondea cada cuenta.
// Devuelve error sólo si alguna identidad no se pudo recuperar.
func (p *Provisioner) Bootstrap(ctx context.Context, accounts []Account) error {
	for _, a := range accounts {
		if err := p.EnsureIdentity(ctx, a.Identity.Name, a.Mnemonic); err != nil {
			return err
		}
	}

	for _, a := range accounts {
		id := a.Identity
		if coins, ok := p.reader.GetAccountBalance(ctx, id.Address); ok {
			slog.Info("provision: bank balance", "identity", id.Name, "coins", formatCoins(coins))
		}

		p.FundSubaccount(ctx, id, a.Deposit)
		if err := pacing.Wait(ctx, p.policy.PostDeposit, "post deposit"); err != nil {
			return err
		}

		if q, ok := p.reader.GetSubaccountBalance(ctx, id.Address); ok {
			slog.Info("provision: subaccount balance",
				"identity", id.Name, "usdc", decimal.New(q, -usdcDecimals).StringFixed(2), "quantums", q)
		}

		p.EnableMargin(ctx, id)
		if err := pacing.Wait(ctx, p.policy.PostDeposit, "post margin"); err != nil {
			return err
		}
	}

	slog.Info("provision: bootstrap complete", "identities", len(accounts))
	return nil
}

func formatCoins(coins []domain.Coin) string {
	if len(coins) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(coins))
	for _, c := range coins {
		parts = append(parts, c.Amount+c.Denom)
	}
	return strings.Join(parts, ", ")
}
