// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// CreateCampaign creates a campaign and dispatches it. A scheduled_at
// in the payload routes the run through the dispatch queue instead of
// sending inline.
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(input.JobSeekerIDs) == 0 && len(input.AssignmentIDs) == 0 {
		http.Error(w, "job_seeker_ids or assignment_ids required", http.StatusBadRequest)
		return
	}
	if input.Type == "" {
		input.Type = model.NotificationBoth
	}

	if input.ScheduledAt != nil {
		campaign, err := c.CampaignService.CreateAndQueue(input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(campaign)
		return
	}

	summary, err := c.CampaignService.CreateAndSend(input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// RetryFailed re-attempts only the failed channels of a campaign.
func (c *CampaignController) RetryFailed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	retried, err := c.CampaignService.RetryFailed(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"campaign_id": id,
		"retry_count": retried,
	})
}

// PersonalizedPreview renders the campaign's template for one job
// seeker without sending.
func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	var body struct {
		JobSeekerID     int     `json:"job_seeker_id"`
		OverrideMessage *string `json:"override_message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	subject, emailBody, smsBody, err := c.CampaignService.RenderPreview(campaignID, body.JobSeekerID, body.OverrideMessage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"subject":       subject,
		"email_body":    emailBody,
		"sms_body":      smsBody,
		"job_seeker_id": body.JobSeekerID,
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appErrors.ErrNoRecipients):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case appErrors.IsCampaignNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
