package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rmatos/payment-relay/internal/core"
	"github.com/rmatos/payment-relay/internal/domain"
)

// SettlementConfig parametriza o pool. Os valores default são os do design
// convergido; os testes encurtam os intervalos.
type SettlementConfig struct {
	// Máximo de settlements em voo simultaneamente.
	Concurrency int
	// Pausa do loop externo quando a fila está vazia.
	PollInterval time.Duration
	// Pausa após reenfileirar um item que nenhum processador aceitou,
	// antes de liberar o slot.
	RequeueDelay time.Duration
	// Backoff longo quando o próprio store da fila falha - classe de falha
	// diferente de um processador fora do ar.
	FailureBackoff time.Duration
	// true aguarda a escrita do summary no caminho crítico; false dispara
	// e não acompanha (janela pequena de durabilidade, latência menor).
	SyncSummaryWrite bool
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		Concurrency:      20,
		PollInterval:     50 * time.Millisecond,
		RequeueDelay:     100 * time.Millisecond,
		FailureBackoff:   5 * time.Second,
		SyncSummaryWrite: false,
	}
}

type settlementWorker struct {
	queue   core.PaymentQueueRepositoryInterface
	breaker core.CircuitBreakerRepositoryInterface
	summary core.SummaryRepositoryInterface
	client  core.ProcessorClientInterface
	cfg     SettlementConfig

	slots chan struct{}
}

func NewSettlementWorker(
	queue core.PaymentQueueRepositoryInterface,
	breaker core.CircuitBreakerRepositoryInterface,
	summary core.SummaryRepositoryInterface,
	client core.ProcessorClientInterface,
	cfg SettlementConfig,
) *settlementWorker {
	return &settlementWorker{
		queue:   queue,
		breaker: breaker,
		summary: summary,
		client:  client,
		cfg:     cfg,
		slots:   make(chan struct{}, cfg.Concurrency),
	}
}

// Run drena a fila até o contexto ser cancelado. O loop externo não é
// limitado: ele só bloqueia na aquisição de um slot depois de achar trabalho,
// então existe no máximo um item retirado-mas-não-agendado por vez.
func (w *settlementWorker) Run(ctx context.Context) {
	slog.Info("[Worker:Settlement] - Settlement worker started", "concurrency", w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			slog.Info("[Worker:Settlement] - Settlement worker stopped")
			return
		default:
		}

		payload, err := w.queue.Dequeue(ctx)
		if err != nil {
			slog.Error("[Worker:Settlement] - Failed to dequeue, backing off", "error", err)
			sleepCtx(ctx, w.cfg.FailureBackoff)
			continue
		}
		if payload == nil {
			sleepCtx(ctx, w.cfg.PollInterval)
			continue
		}

		select {
		case w.slots <- struct{}{}:
		case <-ctx.Done():
			// Desligando com um item já retirado: devolve para a fila para
			// não perder o pagamento.
			if err := w.queue.Requeue(context.WithoutCancel(ctx), payload); err != nil {
				slog.Error("[Worker:Settlement] - Failed to requeue during shutdown", "error", err)
			}
			return
		}

		go w.settle(ctx, payload)
	}
}

// settle processa um único pagamento: default primeiro, fallback depois,
// requeue se ambos indisponíveis. O slot é liberado em todo caminho de saída.
func (w *settlementWorker) settle(ctx context.Context, payload []byte) {
	defer func() { <-w.slots }()

	var payment domain.Payment
	if err := msgpack.Unmarshal(payload, &payment); err != nil {
		// Payload malformado é descartado sem efeito no summary.
		slog.Error("[Worker:Settlement] - Dropping malformed payload", "error", err)
		return
	}

	for _, processor := range domain.Processors {
		if w.trySettle(ctx, processor, &payment) {
			return
		}
	}

	// Nenhum processador aceitou: devolve o payload original intacto e
	// segura o slot por um instante para não saturar o loop de leitura.
	if err := w.queue.Requeue(ctx, payload); err != nil {
		slog.Error("[Worker:Settlement] - Failed to requeue payment", "correlation_id", payment.CorrelationId, "error", err)
	}
	sleepCtx(ctx, w.cfg.RequeueDelay)
}

func (w *settlementWorker) trySettle(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment) bool {
	closed, err := w.breaker.IsClosed(ctx, processor)
	if err != nil {
		// Estado do breaker ilegível: não arrisca a chamada, o item acaba
		// reenfileirado e tentado de novo.
		return false
	}
	if !closed {
		return false
	}

	settledAt, err := w.client.Settle(ctx, processor, payment)
	if err != nil {
		slog.Warn("[Worker:Settlement] - Processor attempt failed", "processor", processor, "correlation_id", payment.CorrelationId, "error", err)
		if err := w.breaker.RecordFailure(ctx, processor); err != nil {
			slog.Error("[Worker:Settlement] - Failed to record breaker failure", "processor", processor, "error", err)
		}
		return false
	}

	if err := w.breaker.RecordSuccess(ctx, processor); err != nil {
		slog.Error("[Worker:Settlement] - Failed to record breaker success", "processor", processor, "error", err)
	}

	w.recordSettlement(ctx, processor, payment, settledAt)
	return true
}

func (w *settlementWorker) recordSettlement(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment, settledAt time.Time) {
	record := func(ctx context.Context) {
		if err := w.summary.Record(ctx, processor, payment, settledAt); err != nil {
			slog.Error("[Worker:Settlement] - Failed to record settlement", "processor", processor, "correlation_id", payment.CorrelationId, "error", err)
		}
	}

	if w.cfg.SyncSummaryWrite {
		record(ctx)
		return
	}
	// Escrita disparada e não acompanhada, fora do caminho crítico.
	go record(context.WithoutCancel(ctx))
}

// sleepCtx dorme respeitando o cancelamento. Devolve false se o contexto
// terminou antes do prazo.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
