package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/rmatos/payment-relay/internal/domain"
	"github.com/rmatos/payment-relay/internal/model"
)

var bufferPool = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// ProcessorClient fala HTTP com os dois processadores externos. Qualquer
// resposta fora da faixa 2xx, timeout ou erro de transporte vira failure.
type ProcessorClient struct {
	httpClient *http.Client

	URL_DEFAULT_PROCESSOR  string
	URL_FALLBACK_PROCESSOR string
}

func NewProcessorClient(URL_DEFAULT_PROCESSOR string, URL_FALLBACK_PROCESSOR string) *ProcessorClient {
	tr := &http.Transport{
		IdleConnTimeout:     60 * time.Second,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 64,
		DisableKeepAlives:   false,
		DisableCompression:  true,
		ForceAttemptHTTP2:   false,
	}
	c := &http.Client{Transport: tr, Timeout: 2 * time.Second}

	return &ProcessorClient{
		httpClient:             c,
		URL_DEFAULT_PROCESSOR:  URL_DEFAULT_PROCESSOR,
		URL_FALLBACK_PROCESSOR: URL_FALLBACK_PROCESSOR,
	}
}

func (pc *ProcessorClient) baseURL(processor domain.ProcessorIdentity) string {
	if processor == domain.ProcessorFallback {
		return pc.URL_FALLBACK_PROCESSOR
	}
	return pc.URL_DEFAULT_PROCESSOR
}

// Settle envia o pagamento ao processador, carimbando requestedAt com o
// relógio desta tentativa (um retry carrega um timestamp novo). Devolve o
// timestamp usado para que o summary registre o mesmo instante.
func (pc *ProcessorClient) Settle(ctx context.Context, processor domain.ProcessorIdentity, payment *domain.Payment) (time.Time, error) {
	requestedAt := time.Now().UTC()

	body := model.ProcessorPaymentRequest{
		CorrelationID: payment.CorrelationId,
		Amount:        payment.Amount,
		RequestedAt:   requestedAt,
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return time.Time{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL(processor)+"/payments", buf)
	if err != nil {
		return time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return time.Time{}, fmt.Errorf("processor %s returned status %d", processor, resp.StatusCode)
	}

	return requestedAt, nil
}

// ProbeHealth consulta o endpoint de saúde do processador. Usado somente
// pela sentinela.
func (pc *ProcessorClient) ProbeHealth(ctx context.Context, processor domain.ProcessorIdentity) (*domain.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.baseURL(processor)+"/payments/service-health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health probe for %s returned status %d", processor, resp.StatusCode)
	}

	var result domain.ProbeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("[SVC:Processor:ProbeHealth] - Failed to decode health response", "processor", processor, "error", err)
		return nil, err
	}
	return &result, nil
}
