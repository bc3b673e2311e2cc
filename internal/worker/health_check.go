package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rmatos/payment-relay/internal/core"
	"github.com/rmatos/payment-relay/internal/domain"
)

type SentinelConfig struct {
	// Espera inicial antes do primeiro probe, para o sistema estabilizar.
	StartupDelay time.Duration
	// Período entre probes, respeitando o rate limit dos processadores.
	Interval time.Duration
}

func DefaultSentinelConfig() SentinelConfig {
	return SentinelConfig{
		StartupDelay: 5 * time.Second,
		Interval:     5 * time.Second,
	}
}

// healthSentinel sonda periodicamente a saúde dos dois processadores e
// escreve direto no estado do circuit breaker, por fora do caminho de
// contagem de falhas do worker.
type healthSentinel struct {
	breaker core.CircuitBreakerRepositoryInterface
	client  core.ProcessorClientInterface
	cfg     SentinelConfig
}

func NewHealthSentinel(breaker core.CircuitBreakerRepositoryInterface, client core.ProcessorClientInterface, cfg SentinelConfig) *healthSentinel {
	return &healthSentinel{breaker: breaker, client: client, cfg: cfg}
}

func (s *healthSentinel) Run(ctx context.Context) {
	slog.Info("[Worker:Sentinel] - Health sentinel started")

	if !sleepCtx(ctx, s.cfg.StartupDelay) {
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("[Worker:Sentinel] - Health sentinel stopped")
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

// checkAll sonda os dois processadores em paralelo; o custo do tick fica
// limitado pelo mais lento dos dois, e o resultado de um nunca afeta o
// breaker do outro.
func (s *healthSentinel) checkAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, processor := range domain.Processors {
		wg.Add(1)
		go func(p domain.ProcessorIdentity) {
			defer wg.Done()
			s.checkProcessor(ctx, p)
		}(processor)
	}
	wg.Wait()
}

func (s *healthSentinel) checkProcessor(ctx context.Context, processor domain.ProcessorIdentity) {
	health, err := s.client.ProbeHealth(ctx, processor)
	if err != nil {
		// Timeout, erro de rede ou non-2xx: abre o circuito.
		slog.Warn("[Worker:Sentinel] - Health probe failed, opening circuit", "processor", processor, "error", err)
		if err := s.breaker.ForceOpen(ctx, processor); err != nil {
			slog.Error("[Worker:Sentinel] - Failed to open circuit", "processor", processor, "error", err)
		}
		return
	}

	if health.Failing {
		slog.Warn("[Worker:Sentinel] - Processor reporting failure, opening circuit", "processor", processor)
		if err := s.breaker.ForceOpen(ctx, processor); err != nil {
			slog.Error("[Worker:Sentinel] - Failed to open circuit", "processor", processor, "error", err)
		}
		return
	}

	if err := s.breaker.RecordSuccess(ctx, processor); err != nil {
		slog.Error("[Worker:Sentinel] - Failed to record probe success", "processor", processor, "error", err)
	}
}
