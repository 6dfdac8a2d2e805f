package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, userID int64) {
	statuses, err := s.svc.Budgets.Statuses(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]budgetView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, newBudgetView(st))
	}
	writeData(w, http.StatusOK, out)
}

type createBudgetRequest struct {
	CategoryID     *int            `json:"category_id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	AlertThreshold int             `json:"alert_threshold"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createBudgetRequest
	if !decode(w, r, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		validation(w, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		validation(w, "end_date must be YYYY-MM-DD")
		return
	}

	b := &models.Budget{
		UserID:         userID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Amount:         req.Amount,
		Period:         models.BudgetPeriod(req.Period),
		StartDate:      start,
		AlertThreshold: req.AlertThreshold,
	}
	if !end.IsZero() {
		b.EndDate = &end
	}
	if err := s.svc.Budgets.Create(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.svc.Budgets.Progress(r.Context(), userID, b.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, newBudgetView(st))
}

type updateBudgetRequest struct {
	CategoryID     *int             `json:"category_id"`
	Name           *string          `json:"name"`
	Amount         *decimal.Decimal `json:"amount"`
	Period         *string          `json:"period"`
	StartDate      *string          `json:"start_date"`
	EndDate        *string          `json:"end_date"`
	AlertThreshold *int             `json:"alert_threshold"`
	IsActive       *bool            `json:"is_active"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateBudgetRequest
	if !decode(w, r, &req) {
		return
	}
	ch := service.BudgetChanges{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Amount:         req.Amount,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	}
	if req.Period != nil {
		p := models.BudgetPeriod(*req.Period)
		ch.Period = &p
	}
	if ch.StartDate, ok = optionalDate(w, "start_date", req.StartDate); !ok {
		return
	}
	if ch.EndDate, ok = optionalDate(w, "end_date", req.EndDate); !ok {
		return
	}

	st, err := s.svc.Budgets.Update(r.Context(), userID, id, ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newBudgetView(st))
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request, userID int64) {
	sum, err := s.svc.Budgets.Summary(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summaryView(sum))
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request, userID int64) {
	alerts, err := s.svc.Budgets.Alerts(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, newAlertView(a))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleBudgetPerformance(w http.ResponseWriter, r *http.Request, userID int64) {
	period := models.BudgetPeriod(r.URL.Query().Get("period"))
	if period != "" && !period.Valid() {
		validation(w, "period must be weekly, monthly or yearly")
		return
	}
	entries, err := s.svc.Budgets.Performance(r.Context(), userID, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]performanceView, 0, len(entries))
	for _, e := range entries {
		out = append(out, performanceView(e))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st, err := s.svc.Budgets.Progress(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newBudgetView(st))
}

func (s *Server) handleDeactivateBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Budgets.Deactivate(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Budget deactivated"})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Budget deleted"})
}
