// internal/service/campaign_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jobfairhq/notification-service-go/internal/channel"
	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/queue"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/template"
)

type CampaignService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	RecipientRepo  repository.RecipientRepositoryInterface
	AssignmentRepo repository.AssignmentRepositoryInterface
	Email          channel.EmailSender
	SMS            channel.SMSSender
	Queue          queue.Queue

	EventName string

	// SendDelay throttles the per-recipient loop as a courtesy to the
	// channel providers. Sleep is injectable for tests; nil means
	// time.Sleep.
	SendDelay time.Duration
	Sleep     func(time.Duration)
}

// CreateCampaignInput describes one bulk-notification run. Exactly one
// of JobSeekerIDs (ad-hoc) or AssignmentIDs (assignment run) should be
// populated.
type CreateCampaignInput struct {
	Name          string                 `json:"name"`
	Type          model.NotificationType `json:"notification_type"`
	TemplateType  string                 `json:"template_type"`
	Subject       string                 `json:"subject,omitempty"`
	Message       string                 `json:"message,omitempty"`
	JobSeekerIDs  []int                  `json:"job_seeker_ids,omitempty"`
	AssignmentIDs []int                  `json:"assignment_ids,omitempty"`
	ApprovedOnly  bool                   `json:"approved_only"`
	ScheduledAt   *time.Time             `json:"scheduled_at,omitempty"`
	CreatedBy     string                 `json:"created_by,omitempty"`
	Metadata      string                 `json:"metadata,omitempty"`
}

// RecipientResult is the per-recipient line of a send summary.
type RecipientResult struct {
	RecipientID int    `json:"recipient_id"`
	JobSeekerID int    `json:"job_seeker_id"`
	Name        string `json:"name"`
	EmailSent   bool   `json:"email_sent"`
	SMSSent     bool   `json:"sms_sent"`
	EmailError  string `json:"email_error,omitempty"`
	SMSError    string `json:"sms_error,omitempty"`
}

type SendSummary struct {
	CampaignID int               `json:"campaign_id"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Recipients []RecipientResult `json:"recipients"`
}

func (s *CampaignService) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *CampaignService) resolveTargets(input CreateCampaignInput) ([]model.ResolvedTarget, error) {
	if len(input.AssignmentIDs) > 0 {
		return s.AssignmentRepo.ResolveByAssignmentIDs(input.AssignmentIDs, input.ApprovedOnly)
	}
	return s.AssignmentRepo.ResolveByJobSeekerIDs(input.JobSeekerIDs, input.ApprovedOnly)
}

// CreateAndSend resolves targets, persists the campaign with its
// recipient rows, then works through the recipients sequentially.
// Channel failures are captured per row, never propagated; the only
// hard failures are zero resolvable targets and persistence errors.
func (s *CampaignService) CreateAndSend(input CreateCampaignInput) (*SendSummary, error) {
	tmpl, ok := template.Get(input.TemplateType)
	if !ok {
		return nil, fmt.Errorf("unknown template type: %s", input.TemplateType)
	}

	targets, err := s.resolveTargets(input)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, appErrors.ErrNoRecipients
	}

	now := time.Now()
	campaign := &model.Campaign{
		Name:         input.Name,
		Type:         input.Type,
		TemplateType: input.TemplateType,
		Subject:      input.Subject,
		Message:      input.Message,
		Status:       model.CampaignSending,
		ScheduledAt:  input.ScheduledAt,
		StartedAt:    &now,
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

	summary := &SendSummary{CampaignID: campaign.ID, Total: len(targets)}
	for i := range targets {
		res := s.dispatch(campaign, tmpl, recipients[i], &targets[i])
		summary.Recipients = append(summary.Recipients, res)
		if res.EmailSent || res.SMSSent {
			summary.Successful++
		} else {
			summary.Failed++
		}

		if i < len(targets)-1 {
			s.sleep(s.SendDelay)
		}
	}

	if err := s.CampaignRepo.Complete(campaign.ID, summary.Successful, summary.Failed); err != nil {
		return summary, fmt.Errorf("complete campaign: %w", err)
	}

	return summary, nil
}

// dispatch handles one recipient: render, attempt each eligible
// channel, record outcomes. Never returns an error; everything is
// captured into the result and the recipient row.
func (s *CampaignService) dispatch(campaign *model.Campaign, tmpl template.Template, rec *model.Recipient, target *model.ResolvedTarget) RecipientResult {
	res := RecipientResult{
		RecipientID: rec.ID,
		JobSeekerID: rec.JobSeekerID,
		Name:        target.User.FullName(),
	}

	vars := s.buildVars(campaign, target)
	subject, emailBody := s.renderEmail(campaign, tmpl, vars)
	smsBody := s.renderSMS(campaign, tmpl, vars)

	if campaign.Type.IncludesEmail() && target.HasEmail() {
		msgID, err := s.Email.Send(target.User.Email, subject, emailBody)
		if err != nil {
			res.EmailError = err.Error()
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record email failure:", dbErr)
			}
		} else {
			res.EmailSent = true
			if dbErr := s.RecipientRepo.MarkEmail(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record email success:", dbErr)
			}
		}
	}

	if campaign.Type.IncludesSMS() && target.HasPhone() {
		// A recipient without a phone never reaches here: sms_status
		// stays pending, skipped is not failed.
		msgID, err := s.sendSMS(target, campaign.TemplateType, smsBody)
		if err != nil {
			res.SMSError = err.Error()
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelFailed, "", err.Error()); dbErr != nil {
				log.Println("⚠️ failed to record sms failure:", dbErr)
			}
		} else {
			res.SMSSent = true
			if dbErr := s.RecipientRepo.MarkSMS(rec.ID, model.ChannelSent, msgID, ""); dbErr != nil {
				log.Println("⚠️ failed to record sms success:", dbErr)
			}
		}
	}

	if (res.EmailSent || res.SMSSent) && rec.BoothAssignmentID != nil {
		if err := s.AssignmentRepo.MarkNotified(*rec.BoothAssignmentID); err != nil {
			log.Println("⚠️ failed to flag assignment notified:", err)
		}
	}

	return res
}

func (s *CampaignService) sendSMS(target *model.ResolvedTarget, templateType, body string) (string, error) {
	recipients := []channel.SMSRecipient{{
		PhoneNumber: target.User.Phone,
		Name:        target.User.FullName(),
	}}
	result, err := s.SMS.SendBulk(recipients, templateType, body)
	if err != nil {
		return "", err
	}
	if id, ok := result.MessageIDs[target.User.Phone]; ok {
		return id, nil
	}
	return result.BatchID, nil
}

// buildVars resolves the template variables for one recipient. Values
// come fresh from the joined entities on every call, never cached.
func (s *CampaignService) buildVars(campaign *model.Campaign, target *model.ResolvedTarget) template.Vars {
	vars := template.Vars{
		"recipientName": target.User.FullName(),
		"eventName":     s.EventName,
	}
	if campaign.Message != "" {
		vars["message"] = campaign.Message
	}

	pin := target.JobSeeker.CheckinPIN
	if target.Assignment != nil {
		if target.Assignment.PIN != "" {
			pin = target.Assignment.PIN
		}
		vars["interviewDate"] = target.Assignment.InterviewDate.Format("Monday, Jan 2 2006")
		vars["interviewTime"] = target.Assignment.InterviewTime
	}
	if pin != "" {
		vars["pin"] = pin
	}
	if target.Employer != nil {
		vars["companyName"] = target.Employer.CompanyName
	}
	if target.Booth != nil {
		vars["boothNumber"] = target.Booth.Number
		vars["boothLocation"] = target.Booth.Location
	}
	return vars
}

func (s *CampaignService) renderEmail(campaign *model.Campaign, tmpl template.Template, vars template.Vars) (subject, body string) {
	subjectTemplate := tmpl.EmailSubject
	if strings.TrimSpace(campaign.Subject) != "" {
		subjectTemplate = campaign.Subject
	}
	bodyTemplate := tmpl.EmailBody
	if campaign.TemplateType == template.TypeCustom && strings.TrimSpace(campaign.Message) != "" {
		bodyTemplate = campaign.Message
	}
	return template.Render(subjectTemplate, tmpl.Variables, vars),
		template.Render(bodyTemplate, tmpl.Variables, vars)
}

func (s *CampaignService) renderSMS(campaign *model.Campaign, tmpl template.Template, vars template.Vars) string {
	bodyTemplate := tmpl.SMSBody
	if campaign.TemplateType == template.TypeCustom && strings.TrimSpace(campaign.Message) != "" {
		bodyTemplate = campaign.Message
	}
	return template.Render(bodyTemplate, tmpl.Variables, vars)
}

// RenderPreview renders the campaign's template for a single job
// seeker without sending anything.
func (s *CampaignService) RenderPreview(campaignID, jobSeekerID int, overrideMessage *string) (subject, emailBody, smsBody string, err error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return "", "", "", err
	}

	tmpl, ok := template.Get(campaign.TemplateType)
	if !ok {
		return "", "", "", fmt.Errorf("unknown template type: %s", campaign.TemplateType)
	}

	targets, err := s.AssignmentRepo.ResolveByJobSeekerIDs([]int{jobSeekerID}, false)
	if err != nil {
		return "", "", "", err
	}
	if len(targets) == 0 {
		return "", "", "", fmt.Errorf("job seeker %d not found", jobSeekerID)
	}

	preview := *campaign
	if overrideMessage != nil && strings.TrimSpace(*overrideMessage) != "" {
		preview.Message = *overrideMessage
	}

	vars := s.buildVars(&preview, &targets[0])
	subject, emailBody = s.renderEmail(&preview, tmpl, vars)
	smsBody = s.renderSMS(&preview, tmpl, vars)
	return subject, emailBody, smsBody, nil
}
