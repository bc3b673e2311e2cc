package service

import (
	"context"
	"time"

	"github.com/rmatos/payment-relay/internal/core"
	"github.com/rmatos/payment-relay/internal/domain"
)

// PaymentService atende a superfície de ingresso: enfileira pagamentos
// aceitos e consulta os totais agregados. A liquidação em si acontece no
// worker, nunca no caminho da requisição.
type PaymentService struct {
	queue   core.PaymentQueueRepositoryInterface
	summary core.SummaryRepositoryInterface
}

func NewPaymentService(queue core.PaymentQueueRepositoryInterface, summary core.SummaryRepositoryInterface) *PaymentService {
	return &PaymentService{queue: queue, summary: summary}
}

func (ps *PaymentService) SendPaymentToQueue(ctx context.Context, payment *domain.Payment) error {
	return ps.queue.Enqueue(ctx, payment)
}

func (ps *PaymentService) GetSummary(ctx context.Context, from, to *time.Time) (*domain.Summary, error) {
	return ps.summary.Query(ctx, from, to)
}
