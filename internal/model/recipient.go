// internal/model/recipient.go
package model

import "time"

// ChannelStatus tracks one delivery channel on a recipient row.
// Email and SMS statuses are independent state machines: a failure
// on one channel never blocks the other.
type ChannelStatus string

const (
	ChannelPending   ChannelStatus = "pending"
	ChannelSent      ChannelStatus = "sent"
	ChannelDelivered ChannelStatus = "delivered"
	ChannelFailed    ChannelStatus = "failed"
	ChannelBounced   ChannelStatus = "bounced" // email only
)

func (s ChannelStatus) Succeeded() bool {
	return s == ChannelSent || s == ChannelDelivered
}

// Recipient is the per-campaign delivery record for one job seeker.
// Created once per target at campaign creation, mutated in place as
// each channel completes or fails, never deleted.
type Recipient struct {
	ID                int           `db:"id" json:"id"`
	CampaignID        int           `db:"campaign_id" json:"campaign_id"`
	JobSeekerID       int           `db:"job_seeker_id" json:"job_seeker_id"`
	BoothAssignmentID *int          `db:"booth_assignment_id" json:"booth_assignment_id,omitempty"`
	EmailStatus       ChannelStatus `db:"email_status" json:"email_status"`
	SMSStatus         ChannelStatus `db:"sms_status" json:"sms_status"`
	EmailSentAt       *time.Time    `db:"email_sent_at" json:"email_sent_at,omitempty"`
	SMSSentAt         *time.Time    `db:"sms_sent_at" json:"sms_sent_at,omitempty"`
	EmailDeliveredAt  *time.Time    `db:"email_delivered_at" json:"email_delivered_at,omitempty"`
	SMSDeliveredAt    *time.Time    `db:"sms_delivered_at" json:"sms_delivered_at,omitempty"`
	EmailError        string        `db:"email_error" json:"email_error,omitempty"`
	SMSError          string        `db:"sms_error" json:"sms_error,omitempty"`
	EmailMessageID    string        `db:"email_message_id" json:"email_message_id,omitempty"`
	SMSMessageID      string        `db:"sms_message_id" json:"sms_message_id,omitempty"`
	Opened            bool          `db:"opened" json:"opened"`
	Clicked           bool          `db:"clicked" json:"clicked"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// NeedsRetry reports whether any channel on this row failed.
func (r *Recipient) NeedsRetry() bool {
	return r.EmailStatus == ChannelFailed || r.SMSStatus == ChannelFailed
}
