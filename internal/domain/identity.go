package domain

// TradingIdentity es una de las dos cuentas sintéticas que cotizan en el devnet.
// Se crea una vez durante el provisioning y es inmutable a partir de ahí.
type TradingIdentity struct {
	Name       string // nombre de la key en el keyring local ("bob", "alice")
	Address    string // dirección bech32 on-chain
	Subaccount uint32 // índice del subaccount de trading
}

// String devuelve "name(address/subaccount)" para logs.
func (id TradingIdentity) String() string {
	return id.Name + "(" + id.Address + "/" + uitoa(uint64(id.Subaccount)) + ")"
}

// IsZero devuelve true si la identidad no fue configurada.
func (id TradingIdentity) IsZero() bool {
	return id.Name == "" && id.Address == ""
}
