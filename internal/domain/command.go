package domain

import "strings"

// Command es una invocación al CLI del exchange. Args no incluye el binario.
// Stdin se usa para secretos (mnemonics) que no deben aparecer en la línea de comandos.
type Command struct {
	Args  []string
	Stdin []byte
}

// Name devuelve el subcomando sin argumentos posicionales, p.ej. "tx clob place-order".
// Sirve para logs y para clasificar errores sin exponer parámetros.
func (c Command) Name() string {
	var parts []string
	for _, a := range c.Args {
		if strings.HasPrefix(a, "-") {
			break
		}
		parts = append(parts, a)
		if len(parts) == subcommandDepth(parts) {
			break
		}
	}
	return strings.Join(parts, " ")
}

// String devuelve la línea completa para logs de debug. Stdin nunca se incluye.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// subcommandDepth devuelve cuántos tokens forman el subcomando según su raíz:
// "status" (1), "keys list" (2), "q tx" (2), "tx clob place-order" (3).
func subcommandDepth(parts []string) int {
	switch parts[0] {
	case "status":
		return 1
	case "keys":
		return 2
	case "q", "query":
		if len(parts) > 1 && parts[1] == "tx" {
			return 2
		}
		return 3
	case "tx":
		return 3
	}
	return 1
}

// RawResult es la salida cruda de una invocación.
type RawResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
