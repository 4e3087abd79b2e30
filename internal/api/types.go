package api

import (
	"github.com/mattjoyce/ghrelay/internal/history"
)

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	Sources         int    `json:"sources"`
	DeliveriesTotal int64  `json:"deliveries_total"`
}

// DeliveriesResponse is returned by GET /deliveries, newest first.
type DeliveriesResponse struct {
	Deliveries []history.Record `json:"deliveries"`
	Total      int64            `json:"total"`
}
