package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rmatos/payment-relay/internal/domain"
)

const QUEUE_PAYMENTS = "payments_queue"

type paymentQueueRedisRepository struct {
	db *redis.Client
}

func NewPaymentQueueRepository(db *redis.Client) *paymentQueueRedisRepository {
	return &paymentQueueRedisRepository{db: db}
}

// Enqueue serializa o pagamento e o adiciona na ponta produtora da fila.
// O worker consome da ponta oposta (RPOP), mantendo a ordem FIFO.
func (r *paymentQueueRedisRepository) Enqueue(ctx context.Context, payment *domain.Payment) error {
	b, err := msgpack.Marshal(payment)
	if err != nil {
		slog.Error("[RP:Queue:Enqueue] - Failed to marshal payment", "correlation_id", payment.CorrelationId, "error", err)
		return err
	}

	if err := r.db.LPush(ctx, QUEUE_PAYMENTS, b).Err(); err != nil {
		slog.Error("[RP:Queue:Enqueue] - Failed to push payment", "correlation_id", payment.CorrelationId, "error", err)
		return err
	}
	return nil
}

// Dequeue remove atomicamente o item mais antigo da fila. Fila vazia devolve
// (nil, nil) imediatamente; o backoff é responsabilidade do worker.
func (r *paymentQueueRedisRepository) Dequeue(ctx context.Context) ([]byte, error) {
	data, err := r.db.RPop(ctx, QUEUE_PAYMENTS).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		slog.Error("[RP:Queue:Dequeue] - Failed to pop payment", "error", err)
		return nil, err
	}
	return data, nil
}

// Requeue devolve o payload bruto à ponta produtora, byte a byte, para que o
// item volte à ordem FIFO normal em vez de furar a fila.
func (r *paymentQueueRedisRepository) Requeue(ctx context.Context, payload []byte) error {
	if err := r.db.LPush(ctx, QUEUE_PAYMENTS, payload).Err(); err != nil {
		slog.Error("[RP:Queue:Requeue] - Failed to requeue payment", "error", err)
		return err
	}
	return nil
}
