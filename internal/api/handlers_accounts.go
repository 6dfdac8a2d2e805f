package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, userID int64) {
	accounts, err := s.svc.Accounts.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newAccountView(a))
	}
	writeData(w, http.StatusOK, out)
}

type createAccountRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createAccountRequest
	if !decode(w, r, &req) {
		return
	}
	account := &models.Account{
		UserID:         userID,
		Name:           req.Name,
		Type:           models.AccountType(req.Type),
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
		Icon:           req.Icon,
		Color:          req.Color,
	}
	if err := s.svc.Accounts.Create(r.Context(), account); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, newAccountView(service.AccountBalance{Account: *account, Balance: account.InitialBalance}))
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bal, err := s.svc.Accounts.Balance(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newAccountView(bal))
}

type updateAccountRequest struct {
	Name           *string          `json:"name"`
	Type           *string          `json:"type"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	Currency       *string          `json:"currency"`
	Icon           *string          `json:"icon"`
	Color          *string          `json:"color"`
	IsActive       *bool            `json:"is_active"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if !decode(w, r, &req) {
		return
	}
	ch := service.AccountChanges{
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
		Icon:           req.Icon,
		Color:          req.Color,
		IsActive:       req.IsActive,
	}
	if req.Type != nil {
		t := models.AccountType(*req.Type)
		ch.Type = &t
	}
	bal, err := s.svc.Accounts.Update(r.Context(), userID, id, ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newAccountView(bal))
}

func (s *Server) handleAccountHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	history, err := s.svc.Accounts.History(r.Context(), userID, id, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []pointView{}
	for p := range history {
		out = append(out, pointView{Date: formatDate(p.Date), Balance: p.Balance})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Accounts.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Account deleted"})
}

type transferRequest struct {
	FromAccountID int             `json:"from_account_id"`
	ToAccountID   int             `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Note          string          `json:"note"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request, userID int64) {
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}
	if req.FromAccountID <= 0 || req.ToAccountID <= 0 {
		validation(w, "from_account_id and to_account_id are required")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		validation(w, "date must be YYYY-MM-DD")
		return
	}

	res, err := s.svc.Accounts.Transfer(r.Context(), service.TransferRequest{
		UserID:        userID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Date:          date,
		Note:          req.Note,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Transfer completed",
		Data: transferView{
			Outgoing:    newTransactionView(res.Outgoing),
			Incoming:    newTransactionView(res.Incoming),
			FromBalance: res.FromBalance,
			ToBalance:   res.ToBalance,
		},
	})
}
