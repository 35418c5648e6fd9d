// internal/model/target.go
package model

// ResolvedTarget is one recipient joined with everything the template
// variables need. Assignment-based runs carry booth/employer/assignment;
// ad-hoc job-seeker runs leave them nil.
type ResolvedTarget struct {
	JobSeeker  JobSeeker
	User       User
	Booth      *Booth
	Employer   *Employer
	Assignment *BoothAssignment
}

func (t *ResolvedTarget) HasEmail() bool { return t.User.Email != "" }
func (t *ResolvedTarget) HasPhone() bool { return t.User.Phone != "" }
