package dydx

import (
	"strconv"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// ChainConfig son los parámetros comunes a todas las tx.
type ChainConfig struct {
	ChainID        string
	KeyringBackend string
	Fees           string
	Node           string // vacío = el default del CLI
}

// Commands construye los argv del CLI. No ejecuta nada.
type Commands struct {
	cfg ChainConfig
}

// NewCommands crea un builder con la configuración de chain dada.
func NewCommands(cfg ChainConfig) Commands {
	return Commands{cfg: cfg}
}

// ListKeys lista las keys del keyring en JSON.
func (c Commands) ListKeys() domain.Command {
	return domain.Command{Args: []string{
		"keys", "list", "--keyring-backend", c.cfg.KeyringBackend, "--output", "json",
	}}
}

// RecoverKey importa una key desde su mnemonic. El mnemonic viaja por stdin.
func (c Commands) RecoverKey(name, mnemonic string) domain.Command {
	return domain.Command{
		Args:  []string{"keys", "add", name, "--recover", "--keyring-backend", c.cfg.KeyringBackend},
		Stdin: []byte(mnemonic + "\n"),
	}
}

// DepositToSubaccount deposita quantums de USDC en el subaccount de la identidad.
func (c Commands) DepositToSubaccount(id domain.TradingIdentity, quantums uint64) domain.Command {
	args := []string{
		"tx", "sending", "deposit-to-subaccount",
		id.Name,
		id.Address,
		u32(id.Subaccount),
		strconv.FormatUint(quantums, 10),
	}
	return domain.Command{Args: append(args, c.txFlags(id.Name)...)}
}

// EnableMargin habilita margen para (address, subaccount).
func (c Commands) EnableMargin(id domain.TradingIdentity) domain.Command {
	args := []string{
		"tx", "clob", "update-margin-enabled",
		id.Address,
		u32(id.Subaccount),
		"true",
	}
	return domain.Command{Args: append(args, c.txFlags(id.Name)...)}
}

// PlaceOrder: owner, market, flag, side, clase, size, precio, good-til-block.
func (c Commands) PlaceOrder(req domain.OrderRequest) domain.Command {
	args := []string{
		"tx", "clob", "place-order",
		req.Owner.Address,
		req.MarketID,
		u32(req.Flag),
		strconv.Itoa(int(req.Side)),
		strconv.Itoa(int(req.Class)),
		strconv.FormatUint(req.Size, 10),
		req.Price.String(),
		strconv.FormatUint(req.GoodTilBlock, 10),
	}
	return domain.Command{Args: append(args, c.txFlags(req.Owner.Name)...)}
}

// CancelOrder: owner, market, flags, número de orden, good-til-block.
func (c Commands) CancelOrder(req domain.CancelRequest) domain.Command {
	args := []string{
		"tx", "clob", "cancel-order",
		req.Owner.Address,
		req.MarketID,
		u32(req.Flags),
		u32(req.OrderNumber),
		strconv.FormatUint(req.GoodTilBlock, 10),
	}
	return domain.Command{Args: append(args, c.txFlags(req.Owner.Name)...)}
}

// MarketPrice consulta el precio del oráculo.
func (c Commands) MarketPrice(marketID string) domain.Command {
	return c.query("q", "prices", "market-price", marketID)
}

// Status devuelve el estado del nodo (incluye la altura). Ya sale en JSON.
func (c Commands) Status() domain.Command {
	return domain.Command{Args: append([]string{"status"}, c.nodeFlags()...)}
}

// Tx consulta una tx por hash.
func (c Commands) Tx(hash string) domain.Command {
	return c.query("q", "tx", hash)
}

func (c Commands) Orderbook(marketID string) domain.Command {
	return c.query("q", "clob", "orderbook", marketID)
}

func (c Commands) Fills(marketID string) domain.Command {
	return c.query("q", "clob", "fills", marketID)
}

func (c Commands) Orders(marketID string) domain.Command {
	return c.query("q", "clob", "orders", marketID)
}

func (c Commands) BankBalances(address string) domain.Command {
	return c.query("q", "bank", "balances", address)
}

func (c Commands) ListSubaccounts() domain.Command {
	return c.query("q", "subaccounts", "list-subaccount")
}

func (c Commands) query(args ...string) domain.Command {
	args = append(args, "--output", "json")
	return domain.Command{Args: append(args, c.nodeFlags()...)}
}

func (c Commands) txFlags(from string) []string {
	flags := []string{
		"--from", from,
		"--chain-id", c.cfg.ChainID,
		"--keyring-backend", c.cfg.KeyringBackend,
		"--fees", c.cfg.Fees,
		"-y",
	}
	return append(flags, c.nodeFlags()...)
}

func (c Commands) nodeFlags() []string {
	if c.cfg.Node == "" {
		return nil
	}
	return []string{"--node", c.cfg.Node}
}

func u32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
