// Package api serves the JSON HTTP interface over the services.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"iter"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-ID"

// UserService resolves API callers.
type UserService interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	Register(ctx context.Context, user *models.User) error
	SetCurrency(ctx context.Context, userID int64, currency string) error
}

// AccountService manages accounts and transfers.
type AccountService interface {
	List(ctx context.Context, userID int64) ([]service.AccountBalance, error)
	Create(ctx context.Context, account *models.Account) error
	Balance(ctx context.Context, userID int64, accountID int) (service.AccountBalance, error)
	Update(ctx context.Context, userID int64, accountID int, ch service.AccountChanges) (service.AccountBalance, error)
	History(ctx context.Context, userID int64, accountID, days int) (iter.Seq[finance.BalancePoint], error)
	Delete(ctx context.Context, userID int64, accountID int) error
	Transfer(ctx context.Context, req service.TransferRequest) (*service.TransferResult, error)
}

// CategoryService manages categories.
type CategoryService interface {
	List(ctx context.Context, userID int64) ([]models.Category, error)
	Create(ctx context.Context, cat *models.Category) error
	Get(ctx context.Context, userID int64, id int) (*models.Category, error)
	Update(ctx context.Context, userID int64, id int, name, color *string) (*models.Category, error)
	Delete(ctx context.Context, userID int64, id int) error
}

// TransactionService records, lists and exports transactions.
type TransactionService interface {
	Record(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, userID int64, id int) (*models.Transaction, error)
	Update(ctx context.Context, userID int64, id int, ch service.TransactionChanges) (*models.Transaction, error)
	List(ctx context.Context, q service.ListQuery) (*service.Page, error)
	All(ctx context.Context, userID int64) ([]models.Transaction, error)
	Export(ctx context.Context, q service.ExportQuery) ([]models.Transaction, *models.Category, error)
	Delete(ctx context.Context, userID int64, id int) error
}

// BudgetService creates and evaluates budgets.
type BudgetService interface {
	Create(ctx context.Context, b *models.Budget) error
	Update(ctx context.Context, userID int64, budgetID int, ch service.BudgetChanges) (finance.BudgetStatus, error)
	Statuses(ctx context.Context, userID int64) ([]finance.BudgetStatus, error)
	Progress(ctx context.Context, userID int64, budgetID int) (finance.BudgetStatus, error)
	Summary(ctx context.Context, userID int64) (finance.BudgetSummary, error)
	Alerts(ctx context.Context, userID int64) ([]finance.Alert, error)
	Performance(ctx context.Context, userID int64, period models.BudgetPeriod) ([]finance.PerformanceEntry, error)
	Deactivate(ctx context.Context, userID int64, budgetID int) error
	Delete(ctx context.Context, userID int64, budgetID int) error
}

// ReportService builds reports, forecasts and insights.
type ReportService interface {
	Dashboard(ctx context.Context, userID int64) (finance.Dashboard, error)
	MonthlyReport(ctx context.Context, userID int64, month string) (finance.MonthlyReport, error)
	BalanceHistory(ctx context.Context, userID int64, months int) ([]finance.MonthBalance, error)
	Forecast(ctx context.Context, userID int64) (finance.Forecast, error)
	Insights(ctx context.Context, userID int64, month string) (finance.Insights, error)
}

// Services are the collaborators of the API.
type Services struct {
	Users        UserService
	Accounts     AccountService
	Categories   CategoryService
	Transactions TransactionService
	Budgets      BudgetService
	Reports      ReportService
}

// FromService adapts the concrete services.
func FromService(s *service.Services) Services {
	return Services{
		Users:        s.Users,
		Accounts:     s.Accounts,
		Categories:   s.Categories,
		Transactions: s.Transactions,
		Budgets:      s.Budgets,
		Reports:      s.Reports,
	}
}

// Server is the API HTTP server.
type Server struct {
	http.Server
	svc   Services
	token string
	clock finance.Clock

	// known caches user ids already registered by this process.
	known sync.Map
}

// NewServer configures routes and returns a ready-to-run server. When token
// is non-empty every /api request must carry it as a bearer token.
func NewServer(addr string, svc Services, token string, clock finance.Clock) *Server {
	if clock == nil {
		clock = time.Now
	}
	s := &Server{svc: svc, token: token, clock: clock}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/accounts", s.withUser(s.handleListAccounts)).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.withUser(s.handleCreateAccount)).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}", s.withUser(s.handleAccountBalance)).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", s.withUser(s.handleUpdateAccount)).Methods(http.MethodPut)
	api.HandleFunc("/accounts/{id}", s.withUser(s.handleDeleteAccount)).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/{id}/balance", s.withUser(s.handleAccountBalance)).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/history", s.withUser(s.handleAccountHistory)).Methods(http.MethodGet)
	api.HandleFunc("/transfers", s.withUser(s.handleTransfer)).Methods(http.MethodPost)

	api.HandleFunc("/categories", s.withUser(s.handleListCategories)).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.withUser(s.handleCreateCategory)).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.withUser(s.handleGetCategory)).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.withUser(s.handleUpdateCategory)).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", s.withUser(s.handleDeleteCategory)).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.withUser(s.handleListTransactions)).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.withUser(s.handleCreateTransaction)).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.withUser(s.handleGetTransaction)).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.withUser(s.handleUpdateTransaction)).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.withUser(s.handleDeleteTransaction)).Methods(http.MethodDelete)

	// Fixed budget paths are registered before /budgets/{id}.
	api.HandleFunc("/budgets", s.withUser(s.handleListBudgets)).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.withUser(s.handleCreateBudget)).Methods(http.MethodPost)
	api.HandleFunc("/budgets/summary", s.withUser(s.handleBudgetSummary)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/alerts", s.withUser(s.handleBudgetAlerts)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/performance", s.withUser(s.handleBudgetPerformance)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", s.withUser(s.handleBudgetProgress)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", s.withUser(s.handleUpdateBudget)).Methods(http.MethodPut)
	api.HandleFunc("/budgets/{id}", s.withUser(s.handleDeleteBudget)).Methods(http.MethodDelete)
	api.HandleFunc("/budgets/{id}/progress", s.withUser(s.handleBudgetProgress)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}/deactivate", s.withUser(s.handleDeactivateBudget)).Methods(http.MethodPost)

	api.HandleFunc("/reports/dashboard", s.withUser(s.handleDashboard)).Methods(http.MethodGet)
	api.HandleFunc("/reports/monthly", s.withUser(s.handleMonthlyReport)).Methods(http.MethodGet)
	api.HandleFunc("/reports/balance-history", s.withUser(s.handleBalanceHistory)).Methods(http.MethodGet)
	api.HandleFunc("/forecast", s.withUser(s.handleForecast)).Methods(http.MethodGet)
	api.HandleFunc("/insights", s.withUser(s.handleInsights)).Methods(http.MethodGet)

	api.HandleFunc("/export", s.withUser(s.handleExport)).Methods(http.MethodGet)
	api.HandleFunc("/export/monthly", s.withUser(s.handleExportMonth)).Methods(http.MethodGet)
	api.HandleFunc("/export/category/{id}", s.withUser(s.handleExportCategory)).Methods(http.MethodGet)

	api.HandleFunc("/settings", s.withUser(s.handleGetSettings)).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.withUser(s.handleUpdateSettings)).Methods(http.MethodPut)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(withRequestLog(router), "finflow.api"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", s.Addr).Msg("HTTP API listening")
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// withUser authenticates the request and resolves the caller, registering
// unknown users on first use.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				writeFailure(w, http.StatusUnauthorized, codeUnauthorized, "missing or invalid API token")
				return
			}
		}

		userID, err := strconv.ParseInt(r.Header.Get(UserHeader), 10, 64)
		if err != nil || userID <= 0 {
			writeFailure(w, http.StatusUnauthorized, codeUnauthorized, UserHeader+" header must be a positive integer")
			return
		}

		if err := s.ensureUser(r.Context(), userID); err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) ensureUser(ctx context.Context, userID int64) error {
	if _, ok := s.known.Load(userID); ok {
		return nil
	}
	_, err := s.svc.Users.Get(ctx, userID)
	if errors.Is(err, service.ErrNotFound) {
		err = s.svc.Users.Register(ctx, &models.User{ID: userID})
	}
	if err != nil {
		return err
	}
	s.known.Store(userID, struct{}{})
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"status": "ok"}})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, codeNotFound, "route not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
}
