package dydx

// mapping.go: decoder en dos etapas para las respuestas del CLI.
//
// Las tx con -y imprimen texto plano ("code: 0 ... txhash: ABC") salvo que se
// pida --output json, y las queries a veces devuelven texto de error por stdout.
// Etapa 1: decode JSON estructurado. Etapa 2: buscar el marcador txhash en texto.
// Si ninguna funciona, KindParseFailure (recuperable por el caller).

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/ports"
)

// USDCAssetID es el asset_id del colateral en las posiciones de los subaccounts.
const USDCAssetID = 0

var (
	txHashPattern  = regexp.MustCompile(`(?m)txhash:\s*"?([0-9A-Za-z]+)"?`)
	keyNamePattern = regexp.MustCompile(`(?m)^\s*-?\s*name:\s*"?([^"\s]+)"?\s*$`)
)

// ExecuteJSON ejecuta el comando y decodifica stdout en out.
// Si stdout no es JSON devuelve un *domain.GatewayError con KindParseFailure
// junto con el RawResult, para que el caller pueda aplicar un fallback de texto.
func ExecuteJSON(ctx context.Context, gw ports.Gateway, cmd domain.Command, out any) (domain.RawResult, error) {
	res, err := gw.Execute(ctx, cmd)
	if err != nil {
		return res, err
	}
	if err := decodeJSON(res.Stdout, out); err != nil {
		return res, &domain.GatewayError{Kind: domain.KindParseFailure, Command: cmd.Name(), Err: err}
	}
	return res, nil
}

func decodeJSON(stdout string, out any) error {
	s := strings.TrimSpace(stdout)
	if s == "" {
		return errors.New("empty output")
	}
	return json.Unmarshal([]byte(s), out)
}

// ExtractTxHash busca "txhash: <hash>" en una salida de texto plano.
func ExtractTxHash(stdout string) (string, bool) {
	m := txHashPattern.FindStringSubmatch(stdout)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// decodeSubmission aplica las dos etapas a la respuesta inmediata de una tx.
func decodeSubmission(cmd domain.Command, res domain.RawResult) (domain.Submission, error) {
	var tx txResponse
	if err := decodeJSON(res.Stdout, &tx); err == nil && tx.TxHash != "" {
		return domain.Submission{
			Stage:   domain.StageStructured,
			Outcome: mapTx(tx),
			TxHash:  tx.TxHash,
		}, nil
	}

	if hash, ok := ExtractTxHash(res.Stdout); ok {
		return domain.Submission{Stage: domain.StageTextHash, TxHash: hash}, nil
	}

	return domain.Submission{}, &domain.GatewayError{
		Kind:    domain.KindParseFailure,
		Command: cmd.Name(),
		Err:     errors.New("no JSON response and no txhash marker in output"),
	}
}

func mapTx(tx txResponse) *domain.TransactionOutcome {
	return &domain.TransactionOutcome{
		Hash:   tx.TxHash,
		Code:   uint32(tx.Code),
		RawLog: tx.RawLog,
		Height: uint64(max(tx.Height, 0)),
	}
}

// parseKeyNames acepta el listado JSON o, como fallback, el formato YAML del CLI.
func parseKeyNames(stdout string) []string {
	var entries []keyEntry
	if decodeJSON(stdout, &entries) == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		return names
	}

	var names []string
	for _, m := range keyNamePattern.FindAllStringSubmatch(stdout, -1) {
		names = append(names, m[1])
	}
	return names
}

// sumUSDC suma los quantums de USDC de todos los subaccounts del owner.
func sumUSDC(resp subaccountsResponse, owner string) (total int64, found bool) {
	for _, acc := range resp.Subaccount {
		if acc.ID.Owner != owner {
			continue
		}
		found = true
		for _, pos := range acc.AssetPositions {
			if pos.AssetID == USDCAssetID {
				total += int64(pos.Quantums)
			}
		}
	}
	return total, found
}

func mapCoins(resp bankBalancesResponse) []domain.Coin {
	coins := make([]domain.Coin, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		coins = append(coins, domain.Coin{Denom: b.Denom, Amount: b.Amount})
	}
	return coins
}
