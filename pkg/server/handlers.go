package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	snap, err := s.store.List(r.Context(), collection)
	s.metrics.observeOp("list", err)
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	respondJSON(w, http.StatusOK, api.DocumentsResponse{Documents: snap})
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]

	var doc core.Document
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		s.metrics.observeOp("upsert", err)
		respondError(w, http.StatusBadRequest, "invalid document: "+err.Error())
		return
	}
	if doc.ID != "" && doc.ID != id {
		s.metrics.observeOp("upsert", core.ErrInvalidID)
		respondError(w, http.StatusBadRequest, "document id does not match path")
		return
	}

	err := s.store.Upsert(r.Context(), collection, id, doc)
	s.metrics.observeOp("upsert", err)
	if err != nil {
		s.fail(w, r, "upsert", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	err := s.store.Delete(r.Context(), vars["collection"], vars["id"])
	s.metrics.observeOp("delete", err)
	if err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps store errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidID):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrReadOnly):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("store operation failed", "op", op, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, api.ErrorResponse{Error: message})
}
