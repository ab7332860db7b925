package domain

// Side es el lado de la orden tal como lo codifica el CLI (0=BUY, 1=SELL).
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// OrderClass es el tipo de orden. Sólo usamos limit (1).
type OrderClass int

const OrderClassLimit OrderClass = 1

// Slots fijos (order flag) usados para reemplazar órdenes por número en vez de
// trackear IDs del lado cliente. El cruce usa un slot distinto para no pisar el ask.
const (
	SlotQuote    uint32 = 0
	SlotCrossing uint32 = 1
)

// OrderRequest es la intención de colocar una orden limit con expiración por bloque.
type OrderRequest struct {
	Owner        TradingIdentity
	MarketID     string
	Flag         uint32
	Side         Side
	Class        OrderClass
	Size         uint64 // quantums
	Price        Price  // subticks
	GoodTilBlock uint64
}

// CancelRequest cancela la orden ocupando el slot OrderNumber.
// GoodTilBlock de la cancelación es la altura actual.
type CancelRequest struct {
	Owner        TradingIdentity
	MarketID     string
	Flags        uint32
	OrderNumber  uint32
	GoodTilBlock uint64
}

// Leg identifica cada una de las tres órdenes que se envían por mercado.
type Leg string

const (
	LegBid      Leg = "bid"
	LegAsk      Leg = "ask"
	LegCrossing Leg = "crossing"
)
