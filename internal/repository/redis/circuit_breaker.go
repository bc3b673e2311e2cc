package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rmatos/payment-relay/internal/domain"
)

const (
	STATE_CLOSED    = "Closed"
	STATE_OPEN      = "Open"
	STATE_HALF_OPEN = "HalfOpen"

	// Falhas consecutivas antes de abrir o circuito.
	FAILURE_THRESHOLD = 5
	// Tempo que o circuito fica aberto; a expiração da chave faz o
	// relaxamento Open -> Closed sem nenhuma escrita explícita.
	OPEN_DURATION = 10 * time.Second
)

type circuitBreakerRedisRepository struct {
	db *redis.Client
}

func NewCircuitBreakerRepository(db *redis.Client) *circuitBreakerRedisRepository {
	return &circuitBreakerRedisRepository{db: db}
}

func stateKey(p domain.ProcessorIdentity) string {
	return fmt.Sprintf("circuitbreaker:%s:state", p)
}

func failuresKey(p domain.ProcessorIdentity) string {
	return fmt.Sprintf("circuitbreaker:%s:failures", p)
}

// IsClosed diz se o processador está liberado para tráfego: chave ausente ou
// estado "Closed". HalfOpen NÃO libera tráfego; o caminho de settlement o
// trata como Open. Somente leitura, nunca muta o estado.
func (r *circuitBreakerRedisRepository) IsClosed(ctx context.Context, processor domain.ProcessorIdentity) (bool, error) {
	state, err := r.db.Get(ctx, stateKey(processor)).Result()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		slog.Error("[RP:Breaker:IsClosed] - Failed to read breaker state", "processor", processor, "error", err)
		return false, err
	}
	return state == STATE_CLOSED, nil
}

// RecordFailure incrementa atomicamente o contador de falhas e abre o
// circuito quando o total atinge o threshold.
func (r *circuitBreakerRedisRepository) RecordFailure(ctx context.Context, processor domain.ProcessorIdentity) error {
	count, err := r.db.Incr(ctx, failuresKey(processor)).Result()
	if err != nil {
		slog.Error("[RP:Breaker:RecordFailure] - Failed to increment failures", "processor", processor, "error", err)
		return err
	}

	if count >= FAILURE_THRESHOLD {
		slog.Warn("[RP:Breaker:RecordFailure] - Failure threshold reached, opening circuit", "processor", processor, "failures", count)
		return r.ForceOpen(ctx, processor)
	}
	return nil
}

// RecordSuccess zera o contador e força o estado de volta para Closed,
// incondicionalmente - caminho de recuperação rápida, independente do TTL.
func (r *circuitBreakerRedisRepository) RecordSuccess(ctx context.Context, processor domain.ProcessorIdentity) error {
	if err := r.db.Del(ctx, failuresKey(processor)).Err(); err != nil {
		slog.Error("[RP:Breaker:RecordSuccess] - Failed to clear failures", "processor", processor, "error", err)
		return err
	}
	if err := r.db.Set(ctx, stateKey(processor), STATE_CLOSED, 0).Err(); err != nil {
		slog.Error("[RP:Breaker:RecordSuccess] - Failed to close circuit", "processor", processor, "error", err)
		return err
	}
	return nil
}

// ForceOpen abre o circuito sem consultar o contador de falhas. Usado pela
// sentinela quando o probe falha ou o processador se declara failing.
func (r *circuitBreakerRedisRepository) ForceOpen(ctx context.Context, processor domain.ProcessorIdentity) error {
	if err := r.db.Set(ctx, stateKey(processor), STATE_OPEN, OPEN_DURATION).Err(); err != nil {
		slog.Error("[RP:Breaker:ForceOpen] - Failed to open circuit", "processor", processor, "error", err)
		return err
	}
	return nil
}

// ForceHalfOpen grava o estado HalfOpen sem expiração. O caminho de
// settlement trata esse estado igual a Open.
func (r *circuitBreakerRedisRepository) ForceHalfOpen(ctx context.Context, processor domain.ProcessorIdentity) error {
	if err := r.db.Set(ctx, stateKey(processor), STATE_HALF_OPEN, 0).Err(); err != nil {
		slog.Error("[RP:Breaker:ForceHalfOpen] - Failed to half-open circuit", "processor", processor, "error", err)
		return err
	}
	return nil
}
