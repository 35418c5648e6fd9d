// internal/model/jobseeker.go
package model

import "time"

// JobSeeker is a registered candidate. Contact details live on the
// linked user account.
type JobSeeker struct {
	ID                 int    `db:"id" json:"id"`
	UserID             int    `db:"user_id" json:"user_id"`
	RegistrationStatus string `db:"registration_status" json:"registration_status"` // pending, approved, rejected
	CheckinPIN         string `db:"checkin_pin" json:"checkin_pin,omitempty"`
}

type User struct {
	ID        int    `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone,omitempty"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Employer struct {
	ID          int    `db:"id" json:"id"`
	CompanyName string `db:"company_name" json:"company_name"`
}

type Booth struct {
	ID         int    `db:"id" json:"id"`
	EmployerID int    `db:"employer_id" json:"employer_id"`
	Number     string `db:"booth_number" json:"booth_number"`
	Location   string `db:"location" json:"location"`
}

// BoothAssignment schedules one job seeker into an interview slot at
// a booth. The PIN doubles as the security check-in code for the slot.
type BoothAssignment struct {
	ID               int       `db:"id" json:"id"`
	JobSeekerID      int       `db:"job_seeker_id" json:"job_seeker_id"`
	BoothID          int       `db:"booth_id" json:"booth_id"`
	InterviewDate    time.Time `db:"interview_date" json:"interview_date"`
	InterviewTime    string    `db:"interview_time" json:"interview_time"`
	PIN              string    `db:"pin" json:"pin"`
	NotificationSent bool      `db:"notification_sent" json:"notification_sent"`
}
