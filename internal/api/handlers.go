package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:          "ok",
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		Sources:         s.registry.Len(),
		DeliveriesTotal: s.history.Total(),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleDeliveries handles GET /deliveries.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	resp := DeliveriesResponse{
		Deliveries: s.history.Snapshot(),
		Total:      s.history.Total(),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
