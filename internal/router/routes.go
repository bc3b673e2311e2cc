package router

import (
	"net/http"
	"time"

	json "github.com/json-iterator/go"

	"github.com/rmatos/payment-relay/internal/domain"
	"github.com/rmatos/payment-relay/internal/model"
	"github.com/rmatos/payment-relay/internal/service"
)

const (
	ROUTE_PAYMENT_SAVE    = "POST /payments"
	ROUTE_PAYMENT_SUMMARY = "GET /payments-summary"
	ROUTE_HEALTH_CHECK    = "GET /health"
)

type paymentHandler struct {
	Svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *paymentHandler {
	return &paymentHandler{Svc: svc}
}

// SavePayment só enfileira: nenhuma liquidação síncrona acontece aqui, e
// falhas posteriores de settlement nunca chegam a este chamador.
func (h *paymentHandler) SavePayment(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payment := &domain.Payment{
		CorrelationId: req.CorrelationID,
		Amount:        req.Amount,
	}
	if !payment.Valid() {
		http.Error(w, "Invalid correlationId or amount", http.StatusBadRequest)
		return
	}

	if err := h.Svc.SendPaymentToQueue(r.Context(), payment); err != nil {
		http.Error(w, "Failed to enqueue payment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *paymentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var from *time.Time
	if fromQuery := r.URL.Query().Get("from"); fromQuery != "" {
		f, err := time.Parse(time.RFC3339, fromQuery)
		if err == nil {
			from = &f
		}
	}

	var to *time.Time
	if toQuery := r.URL.Query().Get("to"); toQuery != "" {
		t, err := time.Parse(time.RFC3339, toQuery)
		if err == nil {
			to = &t
		}
	}

	summary, err := h.Svc.GetSummary(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Failed to get summary", http.StatusInternalServerError)
		return
	}

	response := model.SummaryResponse{
		Default:  model.SummaryDetail{TotalRequests: summary.Default.TotalRequests, TotalAmount: summary.Default.TotalAmount},
		Fallback: model.SummaryDetail{TotalRequests: summary.Fallback.TotalRequests, TotalAmount: summary.Fallback.TotalAmount},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode summary", http.StatusInternalServerError)
		return
	}
}

func (h *paymentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

func Routes(handler *paymentHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(ROUTE_PAYMENT_SAVE, handler.SavePayment)
	mux.HandleFunc(ROUTE_PAYMENT_SUMMARY, handler.GetSummary)
	mux.HandleFunc(ROUTE_HEALTH_CHECK, handler.HealthCheck)

	return mux
}
