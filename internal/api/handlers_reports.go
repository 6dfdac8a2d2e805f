package api

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID int64) {
	d, err := s.svc.Reports.Dashboard(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newDashboardView(d))
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request, userID int64) {
	report, err := s.svc.Reports.MonthlyReport(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newMonthlyReportView(report))
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	months, ok := queryInt(w, r, "months")
	if !ok {
		return
	}
	history, err := s.svc.Reports.BalanceHistory(r.Context(), userID, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]monthBalanceView, 0, len(history))
	for _, m := range history {
		out = append(out, monthBalanceView{Label: m.Label, Month: m.MonthKey, Value: m.Value})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request, userID int64) {
	f, err := s.svc.Reports.Forecast(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newForecastView(f))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request, userID int64) {
	in, err := s.svc.Reports.Insights(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newInsightsView(in))
}
