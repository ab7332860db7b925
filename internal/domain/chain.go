package domain

import (
	"bytes"
	"encoding/json"
)

// Coin es un balance bancario (denom, amount) tal como lo devuelve la chain.
type Coin struct {
	Denom  string
	Amount string
}

// Document es una respuesta JSON de sólo observabilidad (orderbook, fills, órdenes).
// No se interpreta: se loguea.
type Document json.RawMessage

// Compact devuelve el JSON en una línea, truncado a maxLen.
func (d Document) Compact(maxLen int) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, d); err != nil {
		return truncate(string(d), maxLen)
	}
	return truncate(buf.String(), maxLen)
}

// Entries suma los elementos de los arrays del nivel superior
// (p.ej. "bids" + "asks", "fills", "orders"). -1 si no hay ninguno.
func (d Document) Entries() int {
	var arr []json.RawMessage
	if json.Unmarshal(d, &arr) == nil {
		return len(arr)
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(d, &obj) != nil {
		return -1
	}
	total, found := 0, false
	for _, v := range obj {
		if json.Unmarshal(v, &arr) == nil {
			total += len(arr)
			found = true
		}
	}
	if !found {
		return -1
	}
	return total
}
