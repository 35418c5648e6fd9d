// internal/service/dispatch.go
package service

import (
	"fmt"
	"log"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/queue"
	"github.com/jobfairhq/notification-service-go/internal/template"
)

// CreateAndQueue persists the campaign and its recipients, then hands
// each recipient to the dispatch queue instead of sending inline. Used
// for scheduled campaigns and large runs processed by cmd/worker.
func (s *CampaignService) CreateAndQueue(input CreateCampaignInput) (*model.Campaign, error) {
	if _, ok := template.Get(input.TemplateType); !ok {
		return nil, fmt.Errorf("unknown template type: %s", input.TemplateType)
	}

	targets, err := s.resolveTargets(input)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, appErrors.ErrNoRecipients
	}

	campaign := &model.Campaign{
		Name:         input.Name,
		Type:         input.Type,
		TemplateType: input.TemplateType,
		Subject:      input.Subject,
		Message:      input.Message,
		Status:       model.CampaignPending,
		ScheduledAt:  input.ScheduledAt,
		CreatedBy:    input.CreatedBy,
		Metadata:     input.Metadata,
	}

	recipients := make([]*model.Recipient, len(targets))
	for i, t := range targets {
		rec := &model.Recipient{JobSeekerID: t.JobSeeker.ID}
		if t.Assignment != nil {
			id := t.Assignment.ID
			rec.BoothAssignmentID = &id
		}
		recipients[i] = rec
	}

	if err := s.CampaignRepo.CreateWithRecipients(campaign, recipients); err != nil {
		return nil, fmt.Errorf("persist campaign: %w", err)
	}

	queued := 0
	for _, rec := range recipients {
		job := queue.DispatchJob{CampaignID: campaign.ID, RecipientID: rec.ID}
		if err := s.Queue.Publish(queue.TopicDispatch, job); err != nil {
			log.Println("⚠️ failed to enqueue recipient", rec.ID, ":", err)
			continue
		}
		queued++
	}

	if queued == 0 {
		// The campaign row exists but nothing will ever process it;
		// the caller must know instead of finding a stuck campaign.
		return campaign, fmt.Errorf("campaign %d created but no recipients could be enqueued", campaign.ID)
	}

	if err := s.CampaignRepo.UpdateStatus(campaign.ID, model.CampaignSending); err != nil {
		return campaign, err
	}
	campaign.Status = model.CampaignSending

	return campaign, nil
}

// DispatchRecipient delivers all still-pending eligible channels for
// one recipient. This is the unit of work consumed from the dispatch
// queue. After the send it reconciles campaign counters and completes
// the campaign once no attemptable channel is left pending.
func (s *CampaignService) DispatchRecipient(recipientID int) error {
	rec, err := s.RecipientRepo.GetByID(recipientID)
	if err != nil {
		return err
	}
	if rec == nil {
		log.Println("⚠️ recipient not found for ID:", recipientID)
		return nil // gone, no retry
	}

	campaign, err := s.CampaignRepo.GetByID(rec.CampaignID)
	if err != nil {
		return err
	}
	if campaign.Status == model.CampaignCancelled {
		return nil
	}

	tmpl, ok := template.Get(campaign.TemplateType)
	if !ok {
		return fmt.Errorf("unknown template type: %s", campaign.TemplateType)
	}

	target, err := s.AssignmentRepo.ResolveRecipient(rec)
	if err != nil {
		return err
	}
	if target == nil {
		// The target entity is gone; its channels can never be
		// attempted, so this may be the delivery that completes the
		// campaign.
		log.Println("⚠️ recipient", rec.ID, "no longer resolves, skipping")
		return s.finishIfDone(campaign)
	}

	// Only channels still pending are attempted; a requeued job never
	// re-sends a channel that already succeeded or failed.
	vars := s.buildVars(campaign, target)
	sentAny := false

	if rec.EmailStatus == model.ChannelPending && campaign.Type.IncludesEmail() && target.HasEmail() {
		subject, body := s.renderEmail(campaign, tmpl, vars)
		msgID, err := s.Email.Send(target.User.Email, subject, body)
		if err != nil {
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record email failure:", dbErr)
			}
		} else {
			sentAny = true
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record email success:", dbErr)
			}
		}
	}

	if rec.SMSStatus == model.ChannelPending && campaign.Type.IncludesSMS() && target.HasPhone() {
		body := s.renderSMS(campaign, tmpl, vars)
		msgID, err := s.sendSMS(target, campaign.TemplateType, body)
		if err != nil {
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record sms failure:", dbErr)
			}
		} else {
			sentAny = true
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record sms success:", dbErr)
			}
		}
	}

	if sentAny && rec.BoothAssignmentID != nil {
		if err := s.AssignmentRepo.MarkNotified(*rec.BoothAssignmentID); err != nil {
			log.Println("⚠️ failed to flag assignment notified:", err)
		}
	}

	s.sleep(s.SendDelay)

	return s.finishIfDone(campaign)
}

// finishIfDone reconciles the campaign counters and marks the campaign
// completed once no recipient has an attemptable channel left. A single
// terminal write avoids per-message counter races.
func (s *CampaignService) finishIfDone(campaign *model.Campaign) error {
	if campaign.Status.Terminal() {
		return nil
	}

	recipients, err := s.RecipientRepo.ListByCampaign(campaign.ID)
	if err != nil {
		return err
	}

	for _, rec := range recipients {
		attemptable, err := s.hasAttemptableChannel(campaign, rec)
		if err != nil {
			return err
		}
		if attemptable {
			return nil
		}
	}

	sent, failed, err := s.CampaignRepo.ReconcileCounts(campaign.ID)
	if err != nil {
		return err
	}
	return s.CampaignRepo.Complete(campaign.ID, sent, failed)
}

// hasAttemptableChannel reports whether any requested channel on rec is
// still pending and actually deliverable. A pending channel with no
// address behind it (phoneless recipient on an SMS run) or whose target
// no longer resolves is settled: nothing will ever attempt it, and it
// must not hold the campaign open.
func (s *CampaignService) hasAttemptableChannel(campaign *model.Campaign, rec *model.Recipient) (bool, error) {
	emailPending := campaign.Type.IncludesEmail() && rec.EmailStatus == model.ChannelPending
	smsPending := campaign.Type.IncludesSMS() && rec.SMSStatus == model.ChannelPending
	if !emailPending && !smsPending {
		return false, nil
	}

	target, err := s.AssignmentRepo.ResolveRecipient(rec)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, nil
	}
	return (emailPending && target.HasEmail()) || (smsPending && target.HasPhone()), nil
}
