// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrNoRecipients means zero targets resolved; the campaign row is
// never created in that case.
var ErrNoRecipients = errors.New("no resolvable recipients")

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// IsCampaignNotFound reports whether err wraps ErrCampaignNotFound.
func IsCampaignNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}
