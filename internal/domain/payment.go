package domain

import (
	"github.com/google/uuid"
)

// ProcessorIdentity identifica um dos dois processadores externos.
// Nunca existe um terceiro valor.
type ProcessorIdentity string

const (
	ProcessorDefault  ProcessorIdentity = "default"
	ProcessorFallback ProcessorIdentity = "fallback"
)

// Processors lista as duas identidades na ordem em que o worker as tenta.
var Processors = [2]ProcessorIdentity{ProcessorDefault, ProcessorFallback}

// Payment é a requisição de pagamento pendente. Imutável após criada:
// o payload enfileirado circula byte a byte por enqueue/requeue/dequeue.
type Payment struct {
	CorrelationId string  // UUID atribuído pelo chamador
	Amount        float64 // valor monetário, sempre > 0
}

func (p *Payment) ValidateCorrelationId() bool {
	_, err := uuid.Parse(p.CorrelationId)
	return err == nil
}

func (p *Payment) Valid() bool {
	return p.ValidateCorrelationId() && p.Amount > 0
}

// ProbeResult é a resposta do endpoint de saúde de um processador.
type ProbeResult struct {
	Failing         bool `json:"failing"`
	MinResponseTime int  `json:"minResponseTime"`
}
