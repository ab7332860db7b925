package dydx

// chain.go: lectura de estado. Cada operación aplica su política de degradación:
//   - precio: default por mercado (degraded-continue)
//   - altura: no disponible (el caller salta el paso)
//   - resto: nil y log (sólo observabilidad)

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/pacing"
)

// GetReferencePrice devuelve el precio del oráculo o el default del mercado.
func (c *Client) GetReferencePrice(ctx context.Context, marketID string) (domain.Price, bool) {
	var resp marketPriceResponse
	_, err := ExecuteJSON(ctx, c.gw, c.cmds.MarketPrice(marketID), &resp)
	if err == nil {
		var p domain.Price
		if p, err = domain.ParsePrice(resp.rawPrice()); err == nil {
			slog.Info("chain: reference price", "market", marketID, "price", p.Label())
			return p, false
		}
	}

	def := c.prices.For(marketID)
	slog.Warn("chain: price query failed, using default",
		"market", marketID,
		"default", def.Label(),
		"kind", domain.KindOf(err),
		"err", err,
	)
	return def, true
}

// GetCurrentHeight devuelve la última altura sincronizada del nodo.
func (c *Client) GetCurrentHeight(ctx context.Context) (uint64, bool) {
	var resp statusResponse
	if _, err := ExecuteJSON(ctx, c.gw, c.cmds.Status(), &resp); err != nil {
		slog.Warn("chain: height unavailable", "kind", domain.KindOf(err), "err", err)
		return 0, false
	}
	h := resp.height()
	if h <= 0 {
		slog.Warn("chain: height unavailable", "err", "missing latest_block_height")
		return 0, false
	}
	slog.Debug("chain: current height", "height", h)
	return uint64(h), true
}

func (c *Client) GetOpenOrders(ctx context.Context, marketID string) domain.Document {
	return c.document(ctx, c.cmds.Orders(marketID), "orders", marketID)
}

func (c *Client) GetOrderbook(ctx context.Context, marketID string) domain.Document {
	return c.document(ctx, c.cmds.Orderbook(marketID), "orderbook", marketID)
}

func (c *Client) GetFills(ctx context.Context, marketID string) domain.Document {
	return c.document(ctx, c.cmds.Fills(marketID), "fills", marketID)
}

// GetSubaccountBalance suma el USDC de todos los subaccounts del owner.
func (c *Client) GetSubaccountBalance(ctx context.Context, owner string) (int64, bool) {
	var resp subaccountsResponse
	if _, err := ExecuteJSON(ctx, c.gw, c.cmds.ListSubaccounts(), &resp); err != nil {
		slog.Warn("chain: subaccount query failed", "owner", owner, "err", err)
		return 0, false
	}
	total, found := sumUSDC(resp, owner)
	if !found {
		slog.Info("chain: no subaccounts for owner", "owner", owner)
		return 0, true
	}
	slog.Info("chain: subaccount balance", "owner", owner, "usdc_quantums", total)
	return total, true
}

// GetAccountBalance devuelve los balances bancarios de address.
func (c *Client) GetAccountBalance(ctx context.Context, address string) ([]domain.Coin, bool) {
	var resp bankBalancesResponse
	if _, err := ExecuteJSON(ctx, c.gw, c.cmds.BankBalances(address), &resp); err != nil {
		slog.Warn("chain: bank balance query failed", "address", address, "err", err)
		return nil, false
	}
	coins := mapCoins(resp)
	for _, coin := range coins {
		slog.Info("chain: bank balance", "address", address, "denom", coin.Denom, "amount", coin.Amount)
	}
	return coins, true
}

// GetTransactionOutcome espera la ventana de settle y consulta la tx.
// nil si la espera se cancela o la query falla.
func (c *Client) GetTransactionOutcome(ctx context.Context, hash string) *domain.TransactionOutcome {
	if err := pacing.Wait(ctx, c.settle, "settle window"); err != nil {
		return nil
	}

	var tx txResponse
	if _, err := ExecuteJSON(ctx, c.gw, c.cmds.Tx(hash), &tx); err != nil {
		slog.Warn("chain: tx query failed", "hash", hash, "kind", domain.KindOf(err), "err", err)
		return nil
	}
	if tx.TxHash == "" {
		tx.TxHash = hash
	}

	out := mapTx(tx)
	if out.OK() {
		slog.Info("chain: tx successful", "hash", hash, "height", out.Height)
	} else {
		slog.Warn("chain: tx failed", "hash", hash, "code", out.Code, "raw_log", out.RawLog)
	}
	return out
}

func (c *Client) document(ctx context.Context, cmd domain.Command, what, marketID string) domain.Document {
	var raw json.RawMessage
	if _, err := ExecuteJSON(ctx, c.gw, cmd, &raw); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrParseFailure) {
			level = slog.LevelInfo
		}
		slog.Log(ctx, level, "chain: query failed", "what", what, "market", marketID, "err", err)
		return nil
	}
	doc := domain.Document(raw)
	slog.Debug("chain: query", "what", what, "market", marketID, "body", doc.Compact(2000))
	return doc
}
