// Package dydxtest provee un exchange en memoria que implementa ports.Gateway
// interpretando los mismos argv que el CLI real. Permite inyectar fallos por
// comando o cada N llamadas.
package dydxtest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/alejandrodnm/devnetmm/internal/domain"
)

// PlacedOrder es una orden recibida por el fake.
type PlacedOrder struct {
	From         string
	Owner        string
	MarketID     string
	Flag         uint32
	Side         domain.Side
	Class        int
	Size         uint64
	Price        domain.Price
	GoodTilBlock uint64
	TxHash       string
}

// Cancel es una cancelación recibida por el fake.
type Cancel struct {
	From         string
	Owner        string
	MarketID     string
	Flags        uint32
	OrderNumber  uint32
	GoodTilBlock uint64
}

type txRecord struct {
	hash   string
	code   uint32
	rawLog string
	height uint64
}

// Exchange es el fake. Los campos exportados se configuran antes de usarlo.
type Exchange struct {
	Height        uint64
	Prices        map[string]string           // marketID → precio crudo del oráculo
	TextResponses bool                        // las tx responden "txhash: ..." en texto plano
	TxCode        uint32                      // code con el que se ejecutan las tx
	TxRawLog      string                      // raw_log de las tx
	FailEvery     int                         // cada N llamadas, exit 1
	Fail          map[string]bool             // por domain.Command.Name()
	Responses     map[string]domain.RawResult // respuesta fija por Command.Name()
	Panic         map[string]bool             // por Command.Name(), para probar el safety net

	mu       sync.Mutex
	calls    []domain.Command
	keys     []string
	orders   []PlacedOrder
	cancels  []Cancel
	deposits map[string]int64
	margin   map[string]bool
	txs      map[string]txRecord
	seq      int
}

// New crea un exchange con altura 100 y precios del devnet local.
func New() *Exchange {
	return &Exchange{
		Height: 100,
		Prices: map[string]string{
			"0": "10050000",
			"1": "10000000",
		},
		Fail:      map[string]bool{},
		Responses: map[string]domain.RawResult{},
		Panic:     map[string]bool{},
		deposits:  map[string]int64{},
		margin:    map[string]bool{},
		txs:       map[string]txRecord{},
	}
}

// AddKey registra una key como si ya existiera en el keyring.
func (e *Exchange) AddKey(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, name)
}

// Execute implementa ports.Gateway.
func (e *Exchange) Execute(_ context.Context, cmd domain.Command) (domain.RawResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, cmd)
	name := cmd.Name()

	if e.Panic[name] {
		panic("dydxtest: injected panic on " + name)
	}
	if e.FailEvery > 0 && len(e.calls)%e.FailEvery == 0 {
		return e.fail(name, "injected fault")
	}
	if e.Fail[name] {
		return e.fail(name, "injected failure")
	}
	if res, ok := e.Responses[name]; ok {
		return res, nil
	}

	args := cmd.Args
	switch name {
	case "keys list":
		return e.jsonOut(e.keyList())
	case "keys add":
		mnemonic := strings.TrimSpace(string(cmd.Stdin))
		if mnemonic == "" || len(strings.Fields(mnemonic)) < 12 {
			return e.fail(name, "invalid mnemonic")
		}
		e.keys = append(e.keys, arg(args, 2))
		return domain.RawResult{Stdout: "- address: dydx1fake\n  name: " + arg(args, 2) + "\n"}, nil
	case "status":
		return e.jsonOut(map[string]any{
			"sync_info": map[string]any{"latest_block_height": strconv.FormatUint(e.Height, 10)},
		})
	case "q prices market-price":
		p, ok := e.Prices[arg(args, 3)]
		if !ok {
			return e.fail(name, "market price not found")
		}
		return domain.RawResult{Stdout: `{"price":"` + p + `"}`}, nil
	case "q tx":
		rec, ok := e.txs[arg(args, 2)]
		if !ok {
			return e.fail(name, "tx not found")
		}
		return e.jsonOut(map[string]any{
			"height":  strconv.FormatUint(rec.height, 10),
			"txhash":  rec.hash,
			"code":    rec.code,
			"raw_log": rec.rawLog,
		})
	case "q clob orderbook":
		return e.jsonOut(e.orderbook(arg(args, 3)))
	case "q clob fills":
		return e.jsonOut(map[string]any{"fills": e.fills(arg(args, 3))})
	case "q clob orders":
		return e.jsonOut(map[string]any{"orders": e.marketOrders(arg(args, 3))})
	case "q bank balances":
		return e.jsonOut(map[string]any{"balances": []map[string]string{
			{"denom": "adv4tnt", "amount": "1000000000000000000000"},
		}})
	case "q subaccounts list-subaccount":
		return e.jsonOut(map[string]any{"subaccount": e.subaccounts()})
	case "tx clob place-order":
		o := PlacedOrder{
			From:         flagValue(args, "--from"),
			Owner:        arg(args, 3),
			MarketID:     arg(args, 4),
			Flag:         uint32(atou(arg(args, 5))),
			Side:         domain.Side(atou(arg(args, 6))),
			Class:        int(atou(arg(args, 7))),
			Size:         atou(arg(args, 8)),
			Price:        domain.Price(atou(arg(args, 9))),
			GoodTilBlock: atou(arg(args, 10)),
		}
		res := e.tx()
		o.TxHash = e.lastHash()
		e.orders = append(e.orders, o)
		return res, nil
	case "tx clob cancel-order":
		e.cancels = append(e.cancels, Cancel{
			From:         flagValue(args, "--from"),
			Owner:        arg(args, 3),
			MarketID:     arg(args, 4),
			Flags:        uint32(atou(arg(args, 5))),
			OrderNumber:  uint32(atou(arg(args, 6))),
			GoodTilBlock: atou(arg(args, 7)),
		})
		return e.tx(), nil
	case "tx sending deposit-to-subaccount":
		e.deposits[arg(args, 4)] += int64(atou(arg(args, 6)))
		return e.tx(), nil
	case "tx clob update-margin-enabled":
		e.margin[arg(args, 3)] = arg(args, 5) == "true"
		return e.tx(), nil
	}
	return e.fail(name, "unknown command")
}

// Calls devuelve una copia de todas las invocaciones recibidas.
func (e *Exchange) Calls() []domain.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// CallsTo cuenta las invocaciones a un subcomando.
func (e *Exchange) CallsTo(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c.Name() == name {
			n++
		}
	}
	return n
}

// Orders devuelve las órdenes recibidas en orden de llegada.
func (e *Exchange) Orders() []PlacedOrder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.orders)
}

// Cancels devuelve las cancelaciones recibidas.
func (e *Exchange) Cancels() []Cancel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.cancels)
}

// Keys devuelve las keys del keyring.
func (e *Exchange) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.keys)
}

// Deposited devuelve los quantums depositados para address.
func (e *Exchange) Deposited(address string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deposits[address]
}

// MarginEnabled indica si se habilitó margen para address.
func (e *Exchange) MarginEnabled(address string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.margin[address]
}

// --- helpers internos (con e.mu tomado) ---

func (e *Exchange) fail(name, msg string) (domain.RawResult, error) {
	res := domain.RawResult{ExitCode: 1, Stderr: "Error: " + msg}
	return res, &domain.GatewayError{
		Kind:     domain.KindCommandFailed,
		Command:  name,
		ExitCode: 1,
		Stderr:   res.Stderr,
	}
}

func (e *Exchange) jsonOut(v any) (domain.RawResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return domain.RawResult{}, err
	}
	return domain.RawResult{Stdout: string(b)}, nil
}

// tx registra una tx nueva y devuelve la respuesta del broadcast.
func (e *Exchange) tx() domain.RawResult {
	e.seq++
	hash := fmt.Sprintf("%064X", e.seq)
	e.txs[hash] = txRecord{hash: hash, code: e.TxCode, rawLog: e.TxRawLog, height: e.Height}

	if e.TextResponses {
		return domain.RawResult{Stdout: fmt.Sprintf(
			"code: 0\ncodespace: \"\"\ndata: \"\"\nheight: \"0\"\ninfo: \"\"\nlogs: []\nraw_log: \"\"\ntxhash: %s\n", hash)}
	}
	b, _ := json.Marshal(map[string]any{
		"height": "0", "txhash": hash, "code": e.TxCode, "raw_log": e.TxRawLog,
	})
	return domain.RawResult{Stdout: string(b)}
}

func (e *Exchange) lastHash() string {
	return fmt.Sprintf("%064X", e.seq)
}

func (e *Exchange) keyList() []map[string]string {
	out := make([]map[string]string, 0, len(e.keys))
	for _, k := range e.keys {
		out = append(out, map[string]string{"name": k, "type": "local"})
	}
	return out
}

func (e *Exchange) marketOrders(marketID string) []PlacedOrder {
	var out []PlacedOrder
	for _, o := range e.orders {
		if o.MarketID == marketID && o.GoodTilBlock >= e.Height {
			out = append(out, o)
		}
	}
	return out
}

func (e *Exchange) orderbook(marketID string) map[string]any {
	bids, asks := []map[string]string{}, []map[string]string{}
	for _, o := range e.marketOrders(marketID) {
		level := map[string]string{"price": o.Price.String(), "size": strconv.FormatUint(o.Size, 10)}
		if o.Side == domain.SideBuy {
			bids = append(bids, level)
		} else {
			asks = append(asks, level)
		}
	}
	return map[string]any{"bids": bids, "asks": asks}
}

// fills empareja de forma ingenua cada venta con la mejor compra de precio >= al suyo.
func (e *Exchange) fills(marketID string) []map[string]string {
	var out []map[string]string
	open := e.marketOrders(marketID)
	for _, sell := range open {
		if sell.Side != domain.SideSell {
			continue
		}
		for _, buy := range open {
			if buy.Side == domain.SideBuy && buy.Price >= sell.Price {
				out = append(out, map[string]string{
					"maker": buy.Owner, "taker": sell.Owner, "price": buy.Price.String(),
				})
				break
			}
		}
	}
	return out
}

func (e *Exchange) subaccounts() []map[string]any {
	out := make([]map[string]any, 0, len(e.deposits))
	for owner, q := range e.deposits {
		out = append(out, map[string]any{
			"id": map[string]any{"owner": owner, "number": 0},
			"asset_positions": []map[string]any{
				{"asset_id": 0, "quantums": strconv.FormatInt(q, 10)},
			},
		})
	}
	return out
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func atou(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
