package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rmatos/payment-relay/internal/domain"
)

const (
	RD_KEY_PAYMENTS_DEFAULT  = "payments:default"
	RD_KEY_PAYMENTS_FALLBACK = "payments:fallback"
)

type summaryRedisRepository struct {
	db *redis.Client
}

func NewSummaryRepository(db *redis.Client) *summaryRedisRepository {
	return &summaryRedisRepository{db: db}
}

func summaryKey(p domain.ProcessorIdentity) string {
	if p == domain.ProcessorFallback {
		return RD_KEY_PAYMENTS_FALLBACK
	}
	return RD_KEY_PAYMENTS_DEFAULT
}

// Record grava um settlement no sorted set do processador, com score no
// timestamp Unix (segundos) para permitir consulta por intervalo de tempo.
// Entradas nunca são mutadas nem removidas depois de gravadas.
func (r *summaryRedisRepository) Record(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment, settledAt time.Time) error {
	member := payment.CorrelationId + ":" + strconv.FormatFloat(payment.Amount, 'f', -1, 64)

	err := r.db.ZAdd(ctx, summaryKey(processor), redis.Z{
		Score:  float64(settledAt.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		slog.Error("[RP:Summary:Record] - Failed to record settlement", "processor", processor, "correlation_id", payment.CorrelationId, "error", err)
		return err
	}
	return nil
}

// Query conta e soma as entradas de cada processador cujo timestamp cai em
// [from, to] (limites inclusivos; ausentes viram -inf/+inf). As duas leituras
// rodam concorrentemente e a consulta não tem efeitos colaterais.
func (r *summaryRedisRepository) Query(ctx context.Context, from, to *time.Time) (*domain.Summary, error) {
	min, max := "-inf", "+inf"
	if from != nil {
		min = fmt.Sprintf("%d", from.Unix())
	}
	if to != nil {
		max = fmt.Sprintf("%d", to.Unix())
	}

	var (
		wg              sync.WaitGroup
		defItem, fbItem domain.SummaryItem
		defErr, fbErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defItem, defErr = r.queryProcessor(ctx, RD_KEY_PAYMENTS_DEFAULT, min, max)
	}()
	go func() {
		defer wg.Done()
		fbItem, fbErr = r.queryProcessor(ctx, RD_KEY_PAYMENTS_FALLBACK, min, max)
	}()
	wg.Wait()

	if defErr != nil {
		return nil, defErr
	}
	if fbErr != nil {
		return nil, fbErr
	}

	return &domain.Summary{Default: defItem, Fallback: fbItem}, nil
}

func (r *summaryRedisRepository) queryProcessor(ctx context.Context, key, min, max string) (domain.SummaryItem, error) {
	entries, err := r.db.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		slog.Error("[RP:Summary:Query] - Failed to range settlements", "key", key, "error", err)
		return domain.SummaryItem{}, err
	}

	item := domain.SummaryItem{}
	for _, entry := range entries {
		// member: "{correlationId}:{amount}" - o UUID não contém ':'
		idx := strings.LastIndexByte(entry, ':')
		if idx < 0 {
			continue
		}
		amount, err := strconv.ParseFloat(entry[idx+1:], 64)
		if err != nil {
			slog.Warn("[RP:Summary:Query] - Skipping malformed entry", "key", key, "member", entry)
			continue
		}
		item.TotalRequests++
		item.TotalAmount += amount
	}
	return item, nil
}
