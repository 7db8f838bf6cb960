package handlers

import "osintscan/pkg/tools"

type ScanRequest struct {
	Domain  string           `json:"domain" binding:"required,scandomain"`
	Options *tools.Selection `json:"options"`
}

type ScanResponse struct {
	ScanID string `json:"scan_id"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}
