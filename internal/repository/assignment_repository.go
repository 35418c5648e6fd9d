package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jobfairhq/notification-service-go/internal/model"
)

// AssignmentRepositoryInterface resolves notification targets into the
// joined records the templates need, and flags assignments as notified.
type AssignmentRepositoryInterface interface {
	ResolveByAssignmentIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error)
	ResolveByJobSeekerIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error)
	ResolveRecipient(rec *model.Recipient) (*model.ResolvedTarget, error)
	MarkNotified(assignmentID int) error
}

type AssignmentRepository struct {
	DB *sql.DB
}

var _ AssignmentRepositoryInterface = (*AssignmentRepository)(nil)

// ResolveByAssignmentIDs joins each booth assignment with its job
// seeker, user, booth and employer. Targets that fail to join (deleted
// user, missing booth) are silently dropped by the inner joins; fewer
// results than requested IDs is expected, not an error.
func (r *AssignmentRepository) ResolveByAssignmentIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error) {
	if len(ids) == 0 {
		return []model.ResolvedTarget{}, nil
	}

	query := `
        SELECT ba.id, ba.job_seeker_id, ba.booth_id, ba.interview_date, ba.interview_time,
               ba.pin, ba.notification_sent,
               js.id, js.user_id, js.registration_status, js.checkin_pin,
               u.id, u.first_name, u.last_name, u.email, COALESCE(u.phone, ''),
               b.id, b.employer_id, b.booth_number, b.location,
               e.id, e.company_name
        FROM booth_assignments ba
        JOIN job_seekers js ON js.id = ba.job_seeker_id
        JOIN users u ON u.id = js.user_id
        JOIN booths b ON b.id = ba.booth_id
        JOIN employers e ON e.id = b.employer_id
        WHERE ba.id = ANY($1)
    `
	if approvedOnly {
		query += ` AND js.registration_status = 'approved'`
	}
	query += ` ORDER BY ba.id`

	rows, err := r.DB.Query(query, pq.Array(toInt64(ids)))
	if err != nil {
		return nil, fmt.Errorf("resolve assignments: %w", err)
	}
	defer rows.Close()

	targets := []model.ResolvedTarget{}
	for rows.Next() {
		var t model.ResolvedTarget
		var ba model.BoothAssignment
		var booth model.Booth
		var employer model.Employer
		err := rows.Scan(
			&ba.ID, &ba.JobSeekerID, &ba.BoothID, &ba.InterviewDate, &ba.InterviewTime,
			&ba.PIN, &ba.NotificationSent,
			&t.JobSeeker.ID, &t.JobSeeker.UserID, &t.JobSeeker.RegistrationStatus, &t.JobSeeker.CheckinPIN,
			&t.User.ID, &t.User.FirstName, &t.User.LastName, &t.User.Email, &t.User.Phone,
			&booth.ID, &booth.EmployerID, &booth.Number, &booth.Location,
			&employer.ID, &employer.CompanyName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignment target: %w", err)
		}
		t.Assignment = &ba
		t.Booth = &booth
		t.Employer = &employer
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// ResolveByJobSeekerIDs joins job seekers with their user accounts for
// ad-hoc campaigns. Same silent-drop contract as assignment resolution.
func (r *AssignmentRepository) ResolveByJobSeekerIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error) {
	if len(ids) == 0 {
		return []model.ResolvedTarget{}, nil
	}

	query := `
        SELECT js.id, js.user_id, js.registration_status, js.checkin_pin,
               u.id, u.first_name, u.last_name, u.email, COALESCE(u.phone, '')
        FROM job_seekers js
        JOIN users u ON u.id = js.user_id
        WHERE js.id = ANY($1)
    `
	if approvedOnly {
		query += ` AND js.registration_status = 'approved'`
	}
	query += ` ORDER BY js.id`

	rows, err := r.DB.Query(query, pq.Array(toInt64(ids)))
	if err != nil {
		return nil, fmt.Errorf("resolve job seekers: %w", err)
	}
	defer rows.Close()

	targets := []model.ResolvedTarget{}
	for rows.Next() {
		var t model.ResolvedTarget
		err := rows.Scan(
			&t.JobSeeker.ID, &t.JobSeeker.UserID, &t.JobSeeker.RegistrationStatus, &t.JobSeeker.CheckinPIN,
			&t.User.ID, &t.User.FirstName, &t.User.LastName, &t.User.Email, &t.User.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job seeker target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// ResolveRecipient re-resolves a single recipient row fresh. Retries
// must not reuse stale PIN or booth data, so this always goes back to
// the source tables. Returns nil if the target no longer resolves.
func (r *AssignmentRepository) ResolveRecipient(rec *model.Recipient) (*model.ResolvedTarget, error) {
	var targets []model.ResolvedTarget
	var err error
	if rec.BoothAssignmentID != nil {
		targets, err = r.ResolveByAssignmentIDs([]int{*rec.BoothAssignmentID}, false)
	} else {
		targets, err = r.ResolveByJobSeekerIDs([]int{rec.JobSeekerID}, false)
	}
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, nil
	}
	return &targets[0], nil
}

// MarkNotified flags the assignment once at least one channel has
// reached its recipient.
func (r *AssignmentRepository) MarkNotified(assignmentID int) error {
	_, err := r.DB.Exec(
		`UPDATE booth_assignments SET notification_sent=true WHERE id=$1`,
		assignmentID,
	)
	return err
}

func toInt64(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
