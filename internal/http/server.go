package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkrent/internal/cache"
	"parkrent/internal/report"
	"parkrent/internal/services"
)

// Server exposes the billing engine as a JSON API.
type Server struct {
	contracts *services.ContractService
	payments  *services.PaymentService
	now       func() time.Time

	reportCache *cache.LRU[report.Stats]
	httpServer  *http.Server
}

func NewServer(contracts *services.ContractService, payments *services.PaymentService) *Server {
	return &Server{
		contracts:   contracts,
		payments:    payments,
		now:         time.Now,
		reportCache: cache.New[report.Stats](4, 5*time.Minute),
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware, loggingMiddleware, s.reportInvalidation)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/contracts", s.handleListContracts).Methods(http.MethodGet)
	api.HandleFunc("/contracts", s.handleCreateContract).Methods(http.MethodPost)
	api.HandleFunc("/contracts.csv", s.handleContractsCSV).Methods(http.MethodGet)
	api.HandleFunc("/contracts/{id:[0-9]+}", s.handleGetContract).Methods(http.MethodGet)
	api.HandleFunc("/contracts/{id:[0-9]+}", s.handleUpdateContract).Methods(http.MethodPut)
	api.HandleFunc("/contracts/{id:[0-9]+}", s.handleDeleteContract).Methods(http.MethodDelete)

	api.HandleFunc("/contracts/{id:[0-9]+}/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/contracts/{id:[0-9]+}/payments", s.handleAddPayment).Methods(http.MethodPost)
	api.HandleFunc("/contracts/{id:[0-9]+}/surplus-refund", s.handleSurplusRefund).Methods(http.MethodPost)

	api.HandleFunc("/payments/{id:[0-9]+}", s.handleEditPayment).Methods(http.MethodPut)
	api.HandleFunc("/payments/{id:[0-9]+}", s.handleDeletePayment).Methods(http.MethodDelete)
	api.HandleFunc("/payments/{id:[0-9]+}/refund-fulfilled", s.handleRefundFulfilled).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}/invoice", s.handleInvoice).Methods(http.MethodGet)

	api.HandleFunc("/recalculate", s.handleRecalculate).Methods(http.MethodPost)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/report.csv", s.handleReportCSV).Methods(http.MethodGet)

	return r
}

// InvalidateReports drops cached report figures. Callers that mutate billing
// state outside the request path, like the periodic recalculation loop, use
// it so /api/report never serves pre-mutation numbers for a full TTL.
func (s *Server) InvalidateReports() {
	s.reportCache.Clear()
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
