package core

import (
	"context"
	"time"

	"github.com/rmatos/payment-relay/internal/domain"
)

// PaymentQueueRepositoryInterface é o contrato da fila de pagamentos pendentes.
// Dequeue devolve o payload bruto para que Requeue possa devolvê-lo intacto.
type PaymentQueueRepositoryInterface interface {
	Enqueue(ctx context.Context, payment *domain.Payment) error
	Dequeue(ctx context.Context) ([]byte, error)
	Requeue(ctx context.Context, payload []byte) error
}

// CircuitBreakerRepositoryInterface é o estado de resiliência por processador.
// Dois escritores independentes (worker e sentinela) mutam o mesmo estado;
// last-write-wins, sem lock do lado do cliente.
type CircuitBreakerRepositoryInterface interface {
	IsClosed(ctx context.Context, processor domain.ProcessorIdentity) (bool, error)
	RecordFailure(ctx context.Context, processor domain.ProcessorIdentity) error
	RecordSuccess(ctx context.Context, processor domain.ProcessorIdentity) error
	ForceOpen(ctx context.Context, processor domain.ProcessorIdentity) error
	ForceHalfOpen(ctx context.Context, processor domain.ProcessorIdentity) error
}

type SummaryRepositoryInterface interface {
	Record(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment, settledAt time.Time) error
	Query(ctx context.Context, from, to *time.Time) (*domain.Summary, error)
}

// ProcessorClientInterface fala com os dois processadores externos.
// Settle devolve o requestedAt carimbado na tentativa, para que o registro
// no summary use o mesmo instante que o processador recebeu.
type ProcessorClientInterface interface {
	Settle(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment) (time.Time, error)
	ProbeHealth(ctx context.Context, processor domain.ProcessorIdentity) (*domain.ProbeResult, error)
}
