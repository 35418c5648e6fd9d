package repository

import (
	"database/sql"
	"fmt"

	"github.com/jobfairhq/notification-service-go/internal/model"
)

// RecipientRepositoryInterface defines methods used by the orchestrator,
// the retry coordinator and the dispatch worker.
type RecipientRepositoryInterface interface {
	GetByID(id int) (*model.Recipient, error)
	ListByCampaign(campaignID int) ([]*model.Recipient, error)
	ListFailed(campaignID int) ([]*model.Recipient, error)
	MarkEmail(id int, status model.ChannelStatus, messageID, errText string) error
	MarkSMS(id int, status model.ChannelStatus, messageID, errText string) error
	StatusCounts(campaignID int) (map[string]map[string]int, error)
}

type RecipientRepository struct {
	DB *sql.DB
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)

const recipientColumns = `
    id, campaign_id, job_seeker_id, booth_assignment_id,
    email_status, sms_status, email_sent_at, sms_sent_at,
    email_delivered_at, sms_delivered_at, email_error, sms_error,
    email_message_id, sms_message_id, opened, clicked, created_at, updated_at`

func scanRecipient(row interface{ Scan(...interface{}) error }) (*model.Recipient, error) {
	var rec model.Recipient
	err := row.Scan(
		&rec.ID, &rec.CampaignID, &rec.JobSeekerID, &rec.BoothAssignmentID,
		&rec.EmailStatus, &rec.SMSStatus, &rec.EmailSentAt, &rec.SMSSentAt,
		&rec.EmailDeliveredAt, &rec.SMSDeliveredAt, &rec.EmailError, &rec.SMSError,
		&rec.EmailMessageID, &rec.SMSMessageID, &rec.Opened, &rec.Clicked,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecipientRepository) GetByID(id int) (*model.Recipient, error) {
	query := `SELECT` + recipientColumns + ` FROM campaign_recipients WHERE id=$1`
	rec, err := scanRecipient(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	return rec, nil
}

func (r *RecipientRepository) ListByCampaign(campaignID int) ([]*model.Recipient, error) {
	query := `SELECT` + recipientColumns + ` FROM campaign_recipients WHERE campaign_id=$1 ORDER BY id`
	return r.list(query, campaignID)
}

// ListFailed selects rows where either channel failed. Rows whose only
// non-success is a still-pending channel are not retry candidates.
func (r *RecipientRepository) ListFailed(campaignID int) ([]*model.Recipient, error) {
	query := `SELECT` + recipientColumns + `
        FROM campaign_recipients
        WHERE campaign_id=$1 AND (email_status='failed' OR sms_status='failed')
        ORDER BY id`
	return r.list(query, campaignID)
}

func (r *RecipientRepository) list(query string, args ...interface{}) ([]*model.Recipient, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []*model.Recipient{}
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

// MarkEmail records one email channel outcome. Success stamps sent_at
// and clears any previous error; failure stores the error text.
func (r *RecipientRepository) MarkEmail(id int, status model.ChannelStatus, messageID, errText string) error {
	query := `
        UPDATE campaign_recipients
        SET email_status=$1,
            email_message_id=CASE WHEN $2 <> '' THEN $2 ELSE email_message_id END,
            email_error=$3,
            email_sent_at=CASE WHEN $1 IN ('sent','delivered') THEN NOW() ELSE email_sent_at END,
            updated_at=NOW()
        WHERE id=$4
    `
	_, err := r.DB.Exec(query, status, messageID, errText, id)
	return err
}

// MarkSMS records one SMS channel outcome, mirroring MarkEmail.
func (r *RecipientRepository) MarkSMS(id int, status model.ChannelStatus, messageID, errText string) error {
	query := `
        UPDATE campaign_recipients
        SET sms_status=$1,
            sms_message_id=CASE WHEN $2 <> '' THEN $2 ELSE sms_message_id END,
            sms_error=$3,
            sms_sent_at=CASE WHEN $1 IN ('sent','delivered') THEN NOW() ELSE sms_sent_at END,
            updated_at=NOW()
        WHERE id=$4
    `
	_, err := r.DB.Exec(query, status, messageID, errText, id)
	return err
}

// StatusCounts returns per-channel status counts for a campaign, e.g.
// counts["email"]["sent"].
func (r *RecipientRepository) StatusCounts(campaignID int) (map[string]map[string]int, error) {
	counts := map[string]map[string]int{
		"email": {"pending": 0, "sent": 0, "delivered": 0, "failed": 0, "bounced": 0},
		"sms":   {"pending": 0, "sent": 0, "delivered": 0, "failed": 0},
	}

	query := `
        SELECT 'email' AS channel, email_status AS status, COUNT(*)
        FROM campaign_recipients WHERE campaign_id=$1 GROUP BY email_status
        UNION ALL
        SELECT 'sms', sms_status, COUNT(*)
        FROM campaign_recipients WHERE campaign_id=$1 GROUP BY sms_status
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel, status string
		var count int
		if err := rows.Scan(&channel, &status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		if _, ok := counts[channel][status]; ok {
			counts[channel][status] = count
		}
	}
	return counts, rows.Err()
}
