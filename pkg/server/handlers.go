package server

import (
	"encoding/json"
	"net/http"

	"github.com/mymmrac/telego"

	"github.com/Saterlix/Nova/pkg/bridge"
	"github.com/Saterlix/Nova/pkg/leads"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook always acknowledges successfully processed updates so
// Telegram does not redeliver them. Unparseable payloads and handler
// failures come back as a generic 500.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhook == nil {
		writeError(w, http.StatusInternalServerError, "Bot configuration missing server-side")
		return
	}

	var update telego.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.log.Error("Webhook payload rejected", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := s.webhook.HandleUpdate(r.Context(), update); err != nil {
		s.log.Error("Webhook update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusInternalServerError, "Chat configuration missing server-side")
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSON(w, http.StatusOK, map[string][]bridge.Message{"updates": {}})
		return
	}

	updates := s.bridge.Poll(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, map[string][]bridge.Message{"updates": updates})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		writeError(w, http.StatusInternalServerError, "Chat configuration missing server-side")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "Message text is required")
		return
	}

	if err := s.bridge.Send(r.Context(), req.Text); err != nil {
		s.log.Error("Visitor message relay failed", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to send message to Telegram")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if s.leads == nil {
		writeError(w, http.StatusInternalServerError, "Lead relay missing server-side")
		return
	}

	var sub leads.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fieldErrors := s.leads.Submit(r.Context(), sub); fieldErrors != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Please check the highlighted fields",
			"errors":  fieldErrors,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Application received! We will contact you shortly.",
	})
}
