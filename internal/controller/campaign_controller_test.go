package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobfairhq/notification-service-go/internal/channel"
	"github.com/jobfairhq/notification-service-go/internal/controller"
	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

// Stubs embed the repository interfaces so only the methods a route
// actually touches need implementations.

type stubCampaignRepo struct {
	repository.CampaignRepositoryInterface
	campaigns map[int]*model.Campaign
	nextID    int
}

func (s *stubCampaignRepo) CreateWithRecipients(c *model.Campaign, recipients []*model.Recipient) error {
	s.nextID++
	c.ID = s.nextID
	c.RecipientCount = len(recipients)
	for i, rec := range recipients {
		rec.ID = s.nextID*100 + i
		rec.CampaignID = c.ID
		rec.EmailStatus = model.ChannelPending
		rec.SMSStatus = model.ChannelPending
	}
	s.campaigns[c.ID] = c
	return nil
}

func (s *stubCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (s *stubCampaignRepo) Complete(id, sent, failed int) error {
	c := s.campaigns[id]
	c.Status = model.CampaignCompleted
	c.SentCount = sent
	c.FailedCount = failed
	return nil
}

type stubRecipientRepo struct {
	repository.RecipientRepositoryInterface
}

func (stubRecipientRepo) MarkEmail(int, model.ChannelStatus, string, string) error { return nil }
func (stubRecipientRepo) MarkSMS(int, model.ChannelStatus, string, string) error   { return nil }

type stubAssignmentRepo struct {
	repository.AssignmentRepositoryInterface
	targets []model.ResolvedTarget
}

func (s stubAssignmentRepo) ResolveByJobSeekerIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error) {
	out := []model.ResolvedTarget{}
	for _, id := range ids {
		for _, t := range s.targets {
			if t.JobSeeker.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (stubAssignmentRepo) MarkNotified(int) error { return nil }

type okEmailSender struct{ sent int }

func (f *okEmailSender) Send(to, subject, body string) (string, error) {
	f.sent++
	return "mid-1", nil
}

type okSMSSender struct{}

func (okSMSSender) SendBulk(recipients []channel.SMSRecipient, templateType, message string) (*channel.BulkSMSResult, error) {
	return &channel.BulkSMSResult{Success: true, BatchID: "b-1"}, nil
}

type fixture struct {
	router    *chi.Mux
	campaigns *stubCampaignRepo
	email     *okEmailSender
}

func newFixture(targets ...model.ResolvedTarget) *fixture {
	campaigns := &stubCampaignRepo{campaigns: map[int]*model.Campaign{}}
	email := &okEmailSender{}
	svc := &service.CampaignService{
		CampaignRepo:   campaigns,
		RecipientRepo:  stubRecipientRepo{},
		AssignmentRepo: stubAssignmentRepo{targets: targets},
		Email:          email,
		SMS:            okSMSSender{},
		EventName:      "Autumn Career Fair",
		Sleep:          func(time.Duration) {},
	}
	ctrl := &controller.CampaignController{CampaignService: svc}

	r := chi.NewRouter()
	r.Post("/campaigns", ctrl.CreateCampaign)
	r.Post("/campaigns/{id}/retry", ctrl.RetryFailed)
	r.Post("/campaigns/{id}/personalized-preview", ctrl.PersonalizedPreview)
	return &fixture{router: r, campaigns: campaigns, email: email}
}

func approvedSeeker(id int, name, email, phone string) model.ResolvedTarget {
	return model.ResolvedTarget{
		JobSeeker: model.JobSeeker{ID: id, UserID: id, RegistrationStatus: "approved", CheckinPIN: "483920"},
		User:      model.User{ID: id, FirstName: name, LastName: "Tester", Email: email, Phone: phone},
	}
}

func TestCreateCampaign_SendsInline(t *testing.T) {
	f := newFixture(approvedSeeker(1, "Alice", "alice@example.com", "+254700000001"))

	body := `{
        "name": "Check-in blast",
        "notification_type": "both",
        "template_type": "event_checkin",
        "job_seeker_ids": [1]
    }`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary service.SendSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, f.email.sent)

	stored := f.campaigns.campaigns[summary.CampaignID]
	require.NotNil(t, stored)
	assert.Equal(t, model.CampaignCompleted, stored.Status)
}

func TestCreateCampaign_RequiresTargetIDs(t *testing.T) {
	f := newFixture()

	body := `{"name": "Empty", "notification_type": "email", "template_type": "event_checkin"}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCampaign_NoResolvableRecipients(t *testing.T) {
	f := newFixture() // no targets registered

	body := `{
        "name": "Ghost town",
        "notification_type": "email",
        "template_type": "event_checkin",
        "job_seeker_ids": [99]
    }`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrNoRecipients.Error())
}

func TestRetryFailed_UnknownCampaign(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/55/retry", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonalizedPreview(t *testing.T) {
	f := newFixture(approvedSeeker(1, "Alice", "alice@example.com", ""))
	f.campaigns.campaigns[7] = &model.Campaign{
		ID:           7,
		Name:         "Preview run",
		Type:         model.NotificationBoth,
		TemplateType: "event_checkin",
		Status:       model.CampaignDraft,
	}

	body := `{"job_seeker_id": 1}`
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/7/personalized-preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Contains(t, out["email_body"], "Alice")
	assert.Contains(t, out["sms_body"], "483920")
	assert.NotContains(t, out["email_body"], "{{")
	assert.Equal(t, 0, f.email.sent, "preview must not send anything")
}
