// internal/service/retry.go
package service

import (
	"fmt"
	"log"

	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/template"
)

// RetryFailed re-attempts only the failed channel(s) of a campaign's
// recipients. Channels that already succeeded are untouched, so a
// second retry with no intervening failures is a no-op returning 0, and
// so is a cancelled campaign. Context is re-resolved per recipient so a
// changed PIN or booth is picked up.
func (s *CampaignService) RetryFailed(campaignID int) (int, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return 0, err
	}
	if campaign.Status == model.CampaignCancelled {
		return 0, nil
	}

	tmpl, ok := template.Get(campaign.TemplateType)
	if !ok {
		return 0, fmt.Errorf("unknown template type: %s", campaign.TemplateType)
	}

	failed, err := s.RecipientRepo.ListFailed(campaignID)
	if err != nil {
		return 0, err
	}
	if len(failed) == 0 {
		return 0, nil
	}

	retried := 0
	for i, rec := range failed {
		target, err := s.AssignmentRepo.ResolveRecipient(rec)
		if err != nil {
			log.Println("⚠️ failed to re-resolve recipient", rec.ID, ":", err)
			continue
		}
		if target == nil {
			// Target entity is gone; the row stays failed.
			log.Println("⚠️ recipient", rec.ID, "no longer resolves, skipping")
			continue
		}

		s.retryRecipient(campaign, tmpl, rec, target)
		retried++

		if i < len(failed)-1 {
			s.sleep(s.SendDelay)
		}
	}

	if _, _, err := s.CampaignRepo.ReconcileCounts(campaignID); err != nil {
		return retried, fmt.Errorf("reconcile after retry: %w", err)
	}

	return retried, nil
}

func (s *CampaignService) retryRecipient(campaign *model.Campaign, tmpl template.Template, rec *model.Recipient, target *model.ResolvedTarget) {
	vars := s.buildVars(campaign, target)
	firstSuccess := false

	if rec.EmailStatus == model.ChannelFailed && campaign.Type.IncludesEmail() && target.HasEmail() {
		subject, body := s.renderEmail(campaign, tmpl, vars)
		msgID, err := s.Email.Send(target.User.Email, subject, body)
		if err != nil {
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record email retry failure:", dbErr)
			}
		} else {
			firstSuccess = firstSuccess || !rec.SMSStatus.Succeeded()
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record email retry success:", dbErr)
			}
		}
	}

	if rec.SMSStatus == model.ChannelFailed && campaign.Type.IncludesSMS() && target.HasPhone() {
		body := s.renderSMS(campaign, tmpl, vars)
		msgID, err := s.sendSMS(target, campaign.TemplateType, body)
		if err != nil {
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record sms retry failure:", dbErr)
			}
		} else {
			firstSuccess = firstSuccess || !rec.EmailStatus.Succeeded()
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record sms retry success:", dbErr)
			}
		}
	}

	if firstSuccess && rec.BoothAssignmentID != nil {
		if err := s.AssignmentRepo.MarkNotified(*rec.BoothAssignmentID); err != nil {
			log.Println("⚠️ failed to flag assignment notified:", err)
		}
	}
}
