package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/service"
)

// Error codes.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeUnauthorized = "UNAUTHORIZED"
	codeNotFound     = "NOT_FOUND"
	codeSameAccount  = "TRANSFER_SAME_ACCOUNT"
	codeAmount       = "INVALID_AMOUNT"
	codeNoCategory   = "NO_CATEGORY"
	codeAccountInUse = "ACCOUNT_IN_USE"
	codeForbidden    = "FORBIDDEN"
	codeCategoryUsed = "CATEGORY_IN_USE"
	codeInternal     = "INTERNAL_ERROR"

	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Error: &errorBody{Code: code, Message: message}})
}

// writeError maps err onto a status and error code. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeFailure(w, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, finance.ErrSameAccount):
		writeFailure(w, http.StatusUnprocessableEntity, codeSameAccount, finance.ErrSameAccount.Error())
	case errors.Is(err, finance.ErrNonPositiveAmount):
		writeFailure(w, http.StatusUnprocessableEntity, codeAmount, finance.ErrNonPositiveAmount.Error())
	case errors.Is(err, finance.ErrNoCategory):
		writeFailure(w, http.StatusUnprocessableEntity, codeNoCategory, err.Error())
	case errors.Is(err, service.ErrAccountInUse):
		writeFailure(w, http.StatusUnprocessableEntity, codeAccountInUse, "account has transactions and cannot be deleted")
	case errors.Is(err, service.ErrDefaultCategory):
		writeFailure(w, http.StatusForbidden, codeForbidden, service.ErrDefaultCategory.Error())
	case errors.Is(err, service.ErrCategoryInUse):
		writeFailure(w, http.StatusUnprocessableEntity, codeCategoryUsed, "category has transactions and cannot be deleted")
	default:
		logger.Log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeFailure(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func validation(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusBadRequest, codeValidation, message)
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		validation(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} route variable.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		validation(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter; missing means 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		validation(w, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// queryDate parses an optional YYYY-MM-DD query parameter; missing means nil.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	d, err := parseDate(r.URL.Query().Get(name))
	if err != nil {
		validation(w, name+" must be YYYY-MM-DD")
		return nil, false
	}
	if d.IsZero() {
		return nil, true
	}
	return &d, true
}

// optionalDate parses an optional YYYY-MM-DD body field; nil stays nil.
func optionalDate(w http.ResponseWriter, name string, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	d, err := time.Parse(time.DateOnly, *raw)
	if err != nil {
		validation(w, name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}
