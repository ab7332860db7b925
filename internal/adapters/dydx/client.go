package dydx

import (
	"time"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/ports"
)

// defaultFallbackPrice aplica a mercados sin precio por defecto configurado.
const defaultFallbackPrice domain.Price = 20_000

// Client es el adapter del exchange: lectura de estado, órdenes, keyring y fondos.
// Implementa ports.ChainReader, ports.OrderExecutor, ports.Keyring y ports.Funding
// sobre cualquier ports.Gateway.
type Client struct {
	gw     ports.Gateway
	cmds   Commands
	prices domain.PriceTable
	settle time.Duration
}

// NewClient crea un Client. settle es la espera antes de consultar una tx recién enviada.
func NewClient(gw ports.Gateway, cmds Commands, prices domain.PriceTable, settle time.Duration) *Client {
	if prices.Fallback <= 0 {
		prices.Fallback = defaultFallbackPrice
	}
	return &Client{
		gw:     gw,
		cmds:   cmds,
		prices: prices,
		settle: settle,
	}
}

var (
	_ ports.ChainReader   = (*Client)(nil)
	_ ports.OrderExecutor = (*Client)(nil)
	_ ports.Keyring       = (*Client)(nil)
	_ ports.Funding       = (*Client)(nil)
)
