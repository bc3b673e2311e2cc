package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/json-iterator/go"

	"github.com/rmatos/payment-relay/internal/domain"
	"github.com/rmatos/payment-relay/internal/model"
)

func TestSettleSendsAttemptTimestamp(t *testing.T) {
	var received model.ProcessorPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewProcessorClient(srv.URL, "http://unused.invalid")
	payment := &domain.Payment{CorrelationId: "4a7901b8-7d0d-4f50-8ebd-6b1b0e8c2f10", Amount: 19.90}

	before := time.Now().UTC()
	settledAt, err := client.Settle(context.Background(), domain.ProcessorDefault, payment)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if received.CorrelationID != payment.CorrelationId {
		t.Errorf("correlationId = %q, want %q", received.CorrelationID, payment.CorrelationId)
	}
	if received.Amount != payment.Amount {
		t.Errorf("amount = %v, want %v", received.Amount, payment.Amount)
	}
	// requestedAt carimba o relógio desta tentativa e é devolvido ao chamador.
	if received.RequestedAt.Before(before) || received.RequestedAt.After(time.Now().UTC()) {
		t.Errorf("requestedAt %v is outside the attempt window", received.RequestedAt)
	}
	if !settledAt.Equal(received.RequestedAt) {
		t.Errorf("Returned timestamp %v differs from the one sent %v", settledAt, received.RequestedAt)
	}
}

func TestSettleRoutesToFallbackURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewProcessorClient("http://unused.invalid", srv.URL)
	payment := &domain.Payment{CorrelationId: "u1", Amount: 1}

	if _, err := client.Settle(context.Background(), domain.ProcessorFallback, payment); err != nil {
		t.Fatalf("Settle on fallback failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Fallback URL hit %d times, want 1", hits)
	}
}

func TestSettleNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewProcessorClient(srv.URL, srv.URL)
	payment := &domain.Payment{CorrelationId: "u1", Amount: 1}

	if _, err := client.Settle(context.Background(), domain.ProcessorDefault, payment); err == nil {
		t.Error("Settle should fail on a 500 response")
	}
}

func TestSettleTransportErrorIsFailure(t *testing.T) {
	client := NewProcessorClient("http://127.0.0.1:1", "http://127.0.0.1:1")
	payment := &domain.Payment{CorrelationId: "u1", Amount: 1}

	if _, err := client.Settle(context.Background(), domain.ProcessorDefault, payment); err == nil {
		t.Error("Settle should fail when the processor is unreachable")
	}
}

func TestProbeHealthDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/service-health" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"failing":true,"minResponseTime":150}`))
	}))
	defer srv.Close()

	client := NewProcessorClient(srv.URL, "http://unused.invalid")

	result, err := client.ProbeHealth(context.Background(), domain.ProcessorDefault)
	if err != nil {
		t.Fatalf("ProbeHealth failed: %v", err)
	}
	if !result.Failing {
		t.Error("Failing = false, want true")
	}
	if result.MinResponseTime != 150 {
		t.Errorf("MinResponseTime = %d, want 150", result.MinResponseTime)
	}
}

func TestProbeHealthNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewProcessorClient(srv.URL, srv.URL)

	if _, err := client.ProbeHealth(context.Background(), domain.ProcessorDefault); err == nil {
		t.Error("ProbeHealth should fail on a non-200 response")
	}
}
