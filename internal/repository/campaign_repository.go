package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
)

// ListFilter narrows campaign listings.
type ListFilter struct {
	Status   string
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
}

type CampaignRepositoryInterface interface {
	CreateWithRecipients(c *model.Campaign, recipients []*model.Recipient) error
	GetByID(id int) (*model.Campaign, error)
	UpdateStatus(campaignID int, status model.CampaignStatus) error
	Complete(campaignID int, sentCount, failedCount int) error
	ListCampaigns(offset, limit int, f ListFilter) ([]*model.Campaign, int, error)

	// ReconcileCounts recomputes sent/failed from recipient rows: a
	// recipient counts as sent when at least one requested channel
	// succeeded. Persists and returns the new counters.
	ReconcileCounts(campaignID int) (sent, failed int, err error)
}

type CampaignRepository struct {
	DB *sql.DB
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

// ====================== Campaign CRUD ======================

// CreateWithRecipients inserts the campaign and its recipient rows as
// one transaction. The campaign and its recipients must not exist
// independently of each other.
func (r *CampaignRepository) CreateWithRecipients(c *model.Campaign, recipients []*model.Recipient) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin campaign tx: %w", err)
	}
	defer tx.Rollback()

	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	c.RecipientCount = len(recipients)

	query := `
        INSERT INTO campaigns
            (name, notification_type, template_type, subject, message,
             recipient_count, status, scheduled_at, started_at, created_by, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
	err = tx.QueryRow(query,
		c.Name, c.Type, c.TemplateType, c.Subject, c.Message,
		c.RecipientCount, c.Status, c.ScheduledAt, c.StartedAt, c.CreatedBy, c.Metadata, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	recipientQuery := `
        INSERT INTO campaign_recipients
            (campaign_id, job_seeker_id, booth_assignment_id, email_status, sms_status, created_at, updated_at)
        VALUES ($1, $2, $3, 'pending', 'pending', NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	for _, rec := range recipients {
		rec.CampaignID = c.ID
		rec.EmailStatus = model.ChannelPending
		rec.SMSStatus = model.ChannelPending
		err = tx.QueryRow(recipientQuery, c.ID, rec.JobSeekerID, rec.BoothAssignmentID).
			Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert recipient for job seeker %d: %w", rec.JobSeekerID, err)
		}
	}

	return tx.Commit()
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT id, name, notification_type, template_type, subject, message,
               recipient_count, sent_count, failed_count, status,
               scheduled_at, started_at, completed_at, created_by, metadata, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.TemplateType, &c.Subject, &c.Message,
		&c.RecipientCount, &c.SentCount, &c.FailedCount, &c.Status,
		&c.ScheduledAt, &c.StartedAt, &c.CompletedAt, &c.CreatedBy, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, campaignID)
	return err
}

// Complete stamps the terminal state after every recipient was attempted.
func (r *CampaignRepository) Complete(campaignID int, sentCount, failedCount int) error {
	query := `
        UPDATE campaigns
        SET status='completed', sent_count=$1, failed_count=$2, completed_at=NOW(), updated_at=NOW()
        WHERE id=$3
    `
	_, err := r.DB.Exec(query, sentCount, failedCount, campaignID)
	return err
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, f ListFilter) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f.Status != "" {
		where += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, f.Status)
		argPos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND notification_type=$%d", argPos)
		args = append(args, f.Type)
		argPos++
	}
	if f.DateFrom != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, *f.DateTo)
		argPos++
	}

	query := `
        SELECT id, name, notification_type, template_type, subject, message,
               recipient_count, sent_count, failed_count, status,
               scheduled_at, started_at, completed_at, created_by, metadata, created_at, updated_at
        FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

	rows, err := r.DB.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.TemplateType, &c.Subject, &c.Message,
			&c.RecipientCount, &c.SentCount, &c.FailedCount, &c.Status,
			&c.ScheduledAt, &c.StartedAt, &c.CompletedAt, &c.CreatedBy, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	return campaigns, total, nil
}

// ====================== Aggregates ======================

// ReconcileCounts summarizes the two independent channel states into
// campaign-level counters. "Sent" means any channel the campaign
// requested reached sent or delivered for that recipient.
func (r *CampaignRepository) ReconcileCounts(campaignID int) (int, int, error) {
	query := `
        UPDATE campaigns c
        SET sent_count = agg.sent,
            failed_count = c.recipient_count - agg.sent,
            updated_at = NOW()
        FROM (
            SELECT COUNT(*) FILTER (
                WHERE (cr.email_status IN ('sent','delivered') AND c2.notification_type IN ('email','both'))
                   OR (cr.sms_status IN ('sent','delivered') AND c2.notification_type IN ('sms','both'))
            ) AS sent
            FROM campaign_recipients cr
            JOIN campaigns c2 ON c2.id = cr.campaign_id
            WHERE cr.campaign_id = $1
        ) agg
        WHERE c.id = $1
        RETURNING c.sent_count, c.failed_count
    `
	var sent, failed int
	if err := r.DB.QueryRow(query, campaignID).Scan(&sent, &failed); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, appErrors.NewCampaignNotFound(campaignID)
		}
		return 0, 0, fmt.Errorf("reconcile counts: %w", err)
	}
	return sent, failed, nil
}
