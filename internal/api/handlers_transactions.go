package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	perPage, ok := queryInt(w, r, "per_page")
	if !ok {
		return
	}
	categoryID, ok := queryInt(w, r, "category_id")
	if !ok {
		return
	}
	accountID, ok := queryInt(w, r, "account_id")
	if !ok {
		return
	}

	f := repository.TransactionFilter{
		UserID:       userID,
		Type:         models.TransactionType(q.Get("type")),
		SpendingType: models.SpendingType(q.Get("spending_type")),
		Month:        q.Get("month"),
	}
	if categoryID > 0 {
		f.CategoryID = &categoryID
	}
	if accountID > 0 {
		f.AccountID = &accountID
	}
	if f.StartDate, ok = queryDate(w, r, "start_date"); !ok {
		return
	}
	if f.EndDate, ok = queryDate(w, r, "end_date"); !ok {
		return
	}

	result, err := s.svc.Transactions.List(r.Context(), service.ListQuery{TransactionFilter: f, Page: page, PerPage: perPage})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pageView{
		Items:      newTransactionViews(result.Items),
		Pagination: paginationView(result.Pagination),
	})
}

type createTransactionRequest struct {
	CategoryID   int             `json:"category_id"`
	AccountID    *int            `json:"account_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"transaction_date"`
	Note         string          `json:"note"`
	SpendingType string          `json:"spending_type"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CategoryID <= 0 {
		validation(w, "category_id is required")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		validation(w, "transaction_date must be YYYY-MM-DD")
		return
	}

	tx := &models.Transaction{
		UserID:       userID,
		CategoryID:   req.CategoryID,
		AccountID:    req.AccountID,
		Type:         models.TransactionType(req.Type),
		Amount:       req.Amount,
		Date:         date,
		Note:         req.Note,
		SpendingType: models.SpendingType(req.SpendingType),
	}
	if err := s.svc.Transactions.Record(r.Context(), tx); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, newTransactionView(*tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newTransactionView(*tx))
}

type updateTransactionRequest struct {
	CategoryID   *int             `json:"category_id"`
	AccountID    *int             `json:"account_id"`
	Type         *string          `json:"type"`
	Amount       *decimal.Decimal `json:"amount"`
	Date         *string          `json:"transaction_date"`
	Note         *string          `json:"note"`
	SpendingType *string          `json:"spending_type"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateTransactionRequest
	if !decode(w, r, &req) {
		return
	}
	ch := service.TransactionChanges{
		CategoryID: req.CategoryID,
		AccountID:  req.AccountID,
		Amount:     req.Amount,
		Note:       req.Note,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		ch.Type = &t
	}
	if req.SpendingType != nil {
		st := models.SpendingType(*req.SpendingType)
		ch.SpendingType = &st
	}
	if ch.Date, ok = optionalDate(w, "transaction_date", req.Date); !ok {
		return
	}

	tx, err := s.svc.Transactions.Update(r.Context(), userID, id, ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newTransactionView(*tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Transaction deleted"})
}
