package domain

// MarketSnapshot es el estado leído al inicio de cada iteración de mercado.
// HasHeight=false significa que la altura no se pudo obtener y no hay default seguro.
type MarketSnapshot struct {
	MarketID       string
	ReferencePrice Price
	DefaultPrice   bool // true si ReferencePrice vino de la tabla por defecto
	Height         uint64
	HasHeight      bool
}

// QuotePlan son los precios derivados de un snapshot.
// Invariantes: Bid = ref - 2*tick, Ask = ref + 2*tick, Crossing = Bid.
type QuotePlan struct {
	MarketID     string
	TickSize     Price
	Reference    Price
	Bid          Price
	Ask          Price
	Crossing     Price
	Size         uint64
	GoodTilBlock uint64
}

// Spread devuelve Ask - Bid (siempre 4 ticks).
func (p QuotePlan) Spread() Price {
	return p.Ask - p.Bid
}

// OnTickGrid devuelve true si los tres precios son múltiplos exactos del tick.
func (p QuotePlan) OnTickGrid() bool {
	return p.Bid.IsMultipleOf(p.TickSize) &&
		p.Ask.IsMultipleOf(p.TickSize) &&
		p.Crossing.IsMultipleOf(p.TickSize)
}
