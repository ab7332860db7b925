package domain

// TransactionOutcome es el resultado de una tx ya incluida (o del broadcast).
// Code 0 = éxito; cualquier otro valor es un fallo con RawLog legible.
type TransactionOutcome struct {
	Hash   string
	Code   uint32
	RawLog string
	Height uint64
}

// OK devuelve true si la tx se ejecutó sin error.
func (t TransactionOutcome) OK() bool { return t.Code == 0 }

// DecodeStage indica cuál etapa del decoder interpretó la respuesta.
type DecodeStage int

const (
	StageStructured DecodeStage = iota // JSON válido
	StageTextHash                      // línea "txhash: ..." en texto plano
)

func (s DecodeStage) String() string {
	if s == StageTextHash {
		return "text"
	}
	return "json"
}

// Submission es la respuesta inmediata al enviar una tx.
// Con StageStructured, Outcome está poblado; con StageTextHash sólo TxHash.
type Submission struct {
	Stage   DecodeStage
	Outcome *TransactionOutcome
	TxHash  string
}

// OutcomeStatus resume qué pasó con una orden enviada.
type OutcomeStatus string

const (
	OutcomeConfirmed OutcomeStatus = "CONFIRMED" // code 0
	OutcomeRejected  OutcomeStatus = "REJECTED"  // code != 0
	OutcomeFailed    OutcomeStatus = "FAILED"    // el comando mismo falló
	OutcomeUnknown   OutcomeStatus = "UNKNOWN"   // no se pudo resolver
	OutcomeSkipped   OutcomeStatus = "SKIPPED"   // no se intentó
)

// OrderOutcome es el resultado de submit para una pata.
type OrderOutcome struct {
	Leg    Leg
	Status OutcomeStatus
	Tx     *TransactionOutcome
	Err    error
}
