// Package http is the JSON API surface. Handlers stay thin: they
// authenticate the owner, decode the request, call one service method
// and translate its error into a status code.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/goal"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// Deps are the services the API fronts.
type Deps struct {
	Ledger  *ledger.Service
	Budgets *budget.Service
	Goals   *goal.Service
	Reports *report.Service
	Store   *storage.Repository
	Logger  *applog.Logger
}

type Server struct {
	http.Server
	ledger  *ledger.Service
	budgets *budget.Service
	goals   *goal.Service
	reports *report.Service
	store   *storage.Repository

	rateLimiter  *rateLimiter
	traceMW      *trace.Middleware
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:      deps.Ledger,
		budgets:     deps.Budgets,
		goals:       deps.Goals,
		reports:     deps.Reports,
		store:       deps.Store,
		rateLimiter: newRateLimiter(),
		traceMW:     trace.NewMiddleware(),
		startedAt:   time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /settings/savings-goal", s.handleGetSavingsGoal)
	mux.HandleFunc("PUT /settings/savings-goal", s.handleSetSavingsGoal)

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("GET /accounts/summary", s.handleAccountsSummary)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleDeactivateAccount)
	mux.HandleFunc("POST /accounts/{id}/recalculate", s.handleRecalculateBalance)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /categories/{id}", s.handleRenameCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeactivateCategory)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/summary", s.handleMonthlySummary)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("GET /budgets/summary", s.handleBudgetSummary)
	mux.HandleFunc("POST /budgets/copy", s.handleCopyBudgets)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /goals", s.handleCreateGoal)
	mux.HandleFunc("GET /goals", s.handleListGoals)
	mux.HandleFunc("GET /goals/summary", s.handleGoalsSummary)
	mux.HandleFunc("GET /goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /goals/{id}/funds", s.handleAddFunds)
	mux.HandleFunc("POST /goals/{id}/withdrawals", s.handleWithdrawFunds)
	mux.HandleFunc("GET /goals/{id}/allocations", s.handleListAllocations)

	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	handler := s.withRateLimit(mux)
	handlerWithLogging := applog.Middleware(logger, func(ctx context.Context) string {
		return trace.GetRequestID(ctx)
	})(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.traceMW.Middleware(handlerWithLogging),
	}

	return s
}

// withRateLimit throttles mutating requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.store.Ping(ctx); err != nil {
		checks["database"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	traceMetrics := s.traceMW.GetMetrics()
	checks["requests"] = map[string]any{
		"total":                traceMetrics.TotalRequests,
		"last_duration_micros": traceMetrics.AverageResponseTime,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
