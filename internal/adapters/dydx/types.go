package dydx

// Tipos internos para deserializar las respuestas JSON del CLI.
// Los números llegan como string o como número según el endpoint.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexInt acepta "123", 123 o null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := unquote(b)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("flexInt %q: %w", s, err)
	}
	*f = flexInt(v)
	return nil
}

func unquote(b []byte) string {
	return strings.Trim(string(bytes.TrimSpace(b)), `"`)
}

type statusResponse struct {
	SyncInfo       *syncInfo `json:"sync_info"`
	SyncInfoLegacy *syncInfo `json:"SyncInfo"` // CometBFT >= 0.38
}

type syncInfo struct {
	LatestBlockHeight flexInt `json:"latest_block_height"`
}

func (r statusResponse) height() int64 {
	switch {
	case r.SyncInfo != nil:
		return int64(r.SyncInfo.LatestBlockHeight)
	case r.SyncInfoLegacy != nil:
		return int64(r.SyncInfoLegacy.LatestBlockHeight)
	}
	return 0
}

// marketPriceResponse soporta el formato plano {"price": ...} y el envuelto
// {"market_price": {"price": ...}}.
type marketPriceResponse struct {
	Price       json.RawMessage `json:"price"`
	MarketPrice *struct {
		Price json.RawMessage `json:"price"`
	} `json:"market_price"`
}

func (r marketPriceResponse) rawPrice() string {
	if len(r.Price) > 0 {
		return unquote(r.Price)
	}
	if r.MarketPrice != nil {
		return unquote(r.MarketPrice.Price)
	}
	return ""
}

type txResponse struct {
	Height flexInt `json:"height"`
	TxHash string  `json:"txhash"`
	Code   flexInt `json:"code"`
	RawLog string  `json:"raw_log"`
}

type keyEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type subaccountsResponse struct {
	Subaccount []subaccount `json:"subaccount"`
}

type subaccount struct {
	ID struct {
		Owner  string  `json:"owner"`
		Number flexInt `json:"number"`
	} `json:"id"`
	AssetPositions []struct {
		AssetID  flexInt `json:"asset_id"`
		Quantums flexInt `json:"quantums"`
	} `json:"asset_positions"`
}

type bankBalancesResponse struct {
	Balances []struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"balances"`
}
