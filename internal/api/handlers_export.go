package api

import (
	"net/http"

	"gitlab.com/yelinaung/finflow/internal/export"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, userID int64) {
	txs, err := s.svc.Transactions.All(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCSV(w, r, txs, export.Filename(s.clock()))
}

func (s *Server) handleExportMonth(w http.ResponseWriter, r *http.Request, userID int64) {
	month := r.URL.Query().Get("month")
	if month == "" {
		validation(w, "month is required")
		return
	}
	txs, _, err := s.svc.Transactions.Export(r.Context(), service.ExportQuery{UserID: userID, Month: month})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCSV(w, r, txs, export.MonthFilename(month))
}

func (s *Server) handleExportCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	txs, cat, err := s.svc.Transactions.Export(r.Context(), service.ExportQuery{UserID: userID, CategoryID: &id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCSV(w, r, txs, export.CategoryFilename(cat.Name))
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, txs []models.Transaction, filename string) {
	data, err := export.TransactionsCSV(txs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to write export")
	}
}
