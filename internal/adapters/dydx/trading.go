package dydx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// PlaceOrder envía la orden y decodifica la respuesta inmediata.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Submission, error) {
	cmd := c.cmds.PlaceOrder(req)
	slog.Debug("dydx: place order", "cmd", cmd.String())

	res, err := c.gw.Execute(ctx, cmd)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("dydx.PlaceOrder: %w", err)
	}
	sub, err := decodeSubmission(cmd, res)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("dydx.PlaceOrder: %w", err)
	}
	return sub, nil
}

// CancelOrder cancela la orden que ocupa req.OrderNumber.
// Un broadcast estructurado con code != 0 también cuenta como fallo.
func (c *Client) CancelOrder(ctx context.Context, req domain.CancelRequest) error {
	cmd := c.cmds.CancelOrder(req)
	slog.Debug("dydx: cancel order", "cmd", cmd.String())

	res, err := c.gw.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("dydx.CancelOrder: %w", err)
	}
	if sub, err := decodeSubmission(cmd, res); err == nil && sub.Outcome != nil && !sub.Outcome.OK() {
		return fmt.Errorf("dydx.CancelOrder: rejected with code %d: %s", sub.Outcome.Code, sub.Outcome.RawLog)
	}
	return nil
}

// ListIdentities devuelve los nombres de las keys del keyring.
func (c *Client) ListIdentities(ctx context.Context) ([]string, error) {
	res, err := c.gw.Execute(ctx, c.cmds.ListKeys())
	if err != nil {
		return nil, fmt.Errorf("dydx.ListIdentities: %w", err)
	}
	return parseKeyNames(res.Stdout), nil
}

// RecoverIdentity importa la key desde su recovery phrase.
func (c *Client) RecoverIdentity(ctx context.Context, name, mnemonic string) error {
	if _, err := c.gw.Execute(ctx, c.cmds.RecoverKey(name, mnemonic)); err != nil {
		return fmt.Errorf("dydx.RecoverIdentity %s: %w: %w", name, domain.ErrIdentityRecovery, err)
	}
	return nil
}

// DepositToSubaccount deposita quantums en el subaccount de trading de id.
func (c *Client) DepositToSubaccount(ctx context.Context, id domain.TradingIdentity, quantums uint64) error {
	res, err := c.gw.Execute(ctx, c.cmds.DepositToSubaccount(id, quantums))
	if err != nil {
		return fmt.Errorf("dydx.DepositToSubaccount %s: %w", id.Name, err)
	}
	hash, _ := ExtractTxHash(res.Stdout)
	slog.Info("dydx: deposit submitted", "identity", id.Name, "quantums", quantums, "txhash", hash)
	return nil
}

// EnableMargin habilita margen en el subaccount de id, firmado por la propia identidad.
func (c *Client) EnableMargin(ctx context.Context, id domain.TradingIdentity) error {
	res, err := c.gw.Execute(ctx, c.cmds.EnableMargin(id))
	if err != nil {
		return fmt.Errorf("dydx.EnableMargin %s: %w", id.Name, err)
	}
	hash, _ := ExtractTxHash(res.Stdout)
	slog.Info("dydx: margin enable submitted", "identity", id.Name, "txhash", hash)
	return nil
}
