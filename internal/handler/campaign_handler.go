// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

// CampaignHandler serves the read side: campaign listings and
// per-campaign statistics.
type CampaignHandler struct {
	Service *service.CampaignService
}

// ListCampaignsHandler returns a paginated list of campaigns,
// newest-first, filterable by status, type and creation date range.
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	pageSize := 20

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}

	filter := repository.ListFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}
	if from := r.URL.Query().Get("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			http.Error(w, "invalid date_from", http.StatusBadRequest)
			return
		}
		filter.DateFrom = &t
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			http.Error(w, "invalid date_to", http.StatusBadRequest)
			return
		}
		filter.DateTo = &t
	}

	campaigns, pagination, err := h.Service.ListCampaigns(page, pageSize, filter)
	if err != nil {
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

// GetCampaignStatsHandler returns one campaign with per-channel status
// counts and recipient detail.
func (h *CampaignHandler) GetCampaignStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	stats, err := h.Service.GetCampaignStats(id)
	if err != nil {
		if appErrors.IsCampaignNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
