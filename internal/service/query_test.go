package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/service"
	"github.com/jobfairhq/notification-service-go/internal/template"
)

func seedCampaigns(t *testing.T, svc *service.CampaignService, store *memStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		store.addTarget(seekerTarget(i, "Seeker", "N", "seeker@example.com", ""))
		_, err := svc.CreateAndSend(service.CreateCampaignInput{
			Name:         "Run",
			Type:         model.NotificationEmail,
			TemplateType: template.TypeEventCheckin,
			JobSeekerIDs: []int{i},
		})
		require.NoError(t, err)
	}
}

func TestListCampaignsPagination(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeEmailSender{}, &fakeSMSSender{})
	seedCampaigns(t, svc, store, 5)

	page1, pagination1, err := svc.ListCampaigns(1, 2, listAll())
	require.NoError(t, err)
	page2, _, err := svc.ListCampaigns(2, 2, listAll())
	require.NoError(t, err)

	assert.Equal(t, 5, pagination1["total_count"])
	assert.Equal(t, 3, pagination1["total_pages"])
	require.Len(t, page1, 2)
	require.Len(t, page2, 2)

	// newest first, no duplicates across pages
	assert.Greater(t, page1[0].ID, page1[1].ID)
	assert.Greater(t, page1[1].ID, page2[0].ID)

	page3, pagination3, err := svc.ListCampaigns(3, 2, listAll())
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Equal(t, 5, pagination3["total_count"])
}

func TestGetCampaignStats(t *testing.T) {
	store := newMemStore()
	store.addTarget(seekerTarget(1, "Alice", "Mwangi", "alice@example.com", "+254700000001"))
	store.addTarget(seekerTarget(2, "Carol", "Kimani", "carol@example.com", ""))

	email := &fakeEmailSender{failFor: map[string]string{"carol@example.com": "bounced hard"}}
	svc := newTestService(store, email, &fakeSMSSender{})

	summary, err := svc.CreateAndSend(service.CreateCampaignInput{
		Name:         "Stats run",
		Type:         model.NotificationBoth,
		TemplateType: template.TypeEventCheckin,
		JobSeekerIDs: []int{1, 2},
	})
	require.NoError(t, err)

	stats, err := svc.GetCampaignStats(summary.CampaignID)
	require.NoError(t, err)

	assert.Equal(t, summary.CampaignID, stats.Campaign.ID)
	assert.Equal(t, 1, stats.Channels["email"]["sent"])
	assert.Equal(t, 1, stats.Channels["email"]["failed"])
	assert.Equal(t, 1, stats.Channels["sms"]["sent"])
	assert.Equal(t, 1, stats.Channels["sms"]["pending"])
	assert.Len(t, stats.Recipients, 2)
}

func TestGetCampaignStats_NotFound(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeEmailSender{}, &fakeSMSSender{})

	_, err := svc.GetCampaignStats(12345)
	assert.True(t, appErrors.IsCampaignNotFound(err))
}
