package api

import (
	"net/http"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request, userID int64) {
	user, err := s.svc.Users.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newSettingsView(*user))
}

type updateSettingsRequest struct {
	Currency string `json:"currency"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, userID int64) {
	var req updateSettingsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.Users.SetCurrency(r.Context(), userID, req.Currency); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.svc.Users.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Settings updated", Data: newSettingsView(*user)})
}
