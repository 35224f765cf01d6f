package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTurn runs one inbound utterance through the engine. The response
// carries the structured-answer envelope when the reply was fact-derived, so
// callers can audit which answers never touched the model.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := s.chat.Turn(r.Context(), sessionID, req.Text, nil)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal error"
		switch {
		case errors.Is(err, core.ErrStoreUnavailable):
			status = http.StatusServiceUnavailable
			msg = "could not check health records right now"
		case errors.Is(err, core.ErrGenerationFailed):
			status = http.StatusBadGateway
			msg = "assistant is unavailable right now"
		}
		log.FromCtx(r.Context()).Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	sess, err := s.sessions.Get(r.Context(), sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{
		"id":        sess.ID,
		"personaId": sess.PersonaID,
		"saved":     sess.Saved,
		"recap":     sess.Recap,
		"createdAt": sess.CreatedAt,
		"updatedAt": sess.UpdatedAt,
	}
	if sess.PatientID != nil {
		resp["patientId"] = *sess.PatientID
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetSubject lets the surrounding application re-anchor a
// conversation's focus when the user switches patients in the UI.
func (s *Server) handleSetSubject(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PatientID string `json:"patientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	err := s.sessions.SetPatient(r.Context(), sessionID, req.PatientID)
	if errors.Is(err, core.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"patientId": req.PatientID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
