package api

import (
	"net/http"

	"gitlab.com/yelinaung/finflow/internal/models"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, userID int64) {
	cats, err := s.svc.Categories.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryView(c))
	}
	writeData(w, http.StatusOK, out)
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	cat := &models.Category{UserID: userID, Name: req.Name, Type: models.TransactionType(req.Type), Color: req.Color}
	if err := s.svc.Categories.Create(r.Context(), cat); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, newCategoryView(*cat))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cat, err := s.svc.Categories.Get(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newCategoryView(*cat))
}

type updateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	cat, err := s.svc.Categories.Update(r.Context(), userID, id, req.Name, req.Color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, newCategoryView(*cat))
}

// handleDeleteCategory refuses seeded defaults with 403 and categories that
// still have transactions with 422.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Category deleted"})
}
