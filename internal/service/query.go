// internal/service/query.go
package service

import (
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/repository"
)

// CampaignStats bundles a campaign with its per-channel status
// breakdown and recipient detail.
type CampaignStats struct {
	Campaign   *model.Campaign           `json:"campaign"`
	Channels   map[string]map[string]int `json:"channels"`
	Recipients []*model.Recipient        `json:"recipients"`
}

// ListCampaigns fetches campaigns newest-first with pagination.
func (s *CampaignService) ListCampaigns(page, pageSize int, f repository.ListFilter) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, f)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignStats fetches a campaign with per-channel status counts
// and the full recipient detail.
func (s *CampaignService) GetCampaignStats(campaignID int) (*CampaignStats, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	channels, err := s.RecipientRepo.StatusCounts(campaignID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.RecipientRepo.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	return &CampaignStats{
		Campaign:   campaign,
		Channels:   channels,
		Recipients: recipients,
	}, nil
}
