// internal/model/campaign.go
package model

import "time"

// NotificationType selects which channels a campaign targets.
type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
	NotificationBoth  NotificationType = "both"
)

func (t NotificationType) IncludesEmail() bool {
	return t == NotificationEmail || t == NotificationBoth
}

func (t NotificationType) IncludesSMS() bool {
	return t == NotificationSMS || t == NotificationBoth
}

// CampaignStatus values move forward only; cancelled is reachable
// from any non-terminal state.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignPending   CampaignStatus = "pending"
	CampaignSending   CampaignStatus = "sending"
	CampaignCompleted CampaignStatus = "completed"
	CampaignFailed    CampaignStatus = "failed"
	CampaignCancelled CampaignStatus = "cancelled"
)

func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignFailed || s == CampaignCancelled
}

type Campaign struct {
	ID             int              `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	Type           NotificationType `db:"notification_type" json:"notification_type"`
	TemplateType   string           `db:"template_type" json:"template_type"`
	Subject        string           `db:"subject" json:"subject,omitempty"`
	Message        string           `db:"message" json:"message,omitempty"`
	RecipientCount int              `db:"recipient_count" json:"recipient_count"`
	SentCount      int              `db:"sent_count" json:"sent_count"`
	FailedCount    int              `db:"failed_count" json:"failed_count"`
	Status         CampaignStatus   `db:"status" json:"status"`
	ScheduledAt    *time.Time       `db:"scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt      *time.Time       `db:"started_at" json:"started_at,omitempty"`
	CompletedAt    *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedBy      string           `db:"created_by" json:"created_by,omitempty"`
	Metadata       string           `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
}
