package service_test

import (
	"fmt"
	"sort"
	"sync"
	"time"

	appErrors "github.com/jobfairhq/notification-service-go/internal/errors"
	"github.com/jobfairhq/notification-service-go/internal/channel"
	"github.com/jobfairhq/notification-service-go/internal/model"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

// memStore backs all three repository interfaces in memory so the
// orchestrator can be exercised end to end without a database.
type memStore struct {
	mu             sync.Mutex
	nextCampaignID int
	nextRecipient  int
	campaigns      map[int]*model.Campaign
	recipients     map[int]*model.Recipient
	targets        map[int]model.ResolvedTarget // keyed by job seeker ID
	notified       map[int]bool                 // assignment ID -> flagged
}

func newMemStore() *memStore {
	return &memStore{
		nextCampaignID: 1,
		nextRecipient:  1,
		campaigns:      map[int]*model.Campaign{},
		recipients:     map[int]*model.Recipient{},
		targets:        map[int]model.ResolvedTarget{},
		notified:       map[int]bool{},
	}
}

func (m *memStore) addTarget(t model.ResolvedTarget) {
	m.targets[t.JobSeeker.ID] = t
}

// ---- CampaignRepositoryInterface ----

func (m *memStore) CreateWithRecipients(c *model.Campaign, recipients []*model.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextCampaignID
	m.nextCampaignID++
	c.CreatedAt = time.Now()
	c.RecipientCount = len(recipients)
	cp := *c
	m.campaigns[c.ID] = &cp
	for _, rec := range recipients {
		rec.ID = m.nextRecipient
		m.nextRecipient++
		rec.CampaignID = c.ID
		rec.EmailStatus = model.ChannelPending
		rec.SMSStatus = model.ChannelPending
		rp := *rec
		m.recipients[rec.ID] = &rp
	}
	return nil
}

func (m *memStore) GetByID(id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	return nil
}

func (m *memStore) Complete(campaignID, sentCount, failedCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	now := time.Now()
	c.Status = model.CampaignCompleted
	c.SentCount = sentCount
	c.FailedCount = failedCount
	c.CompletedAt = &now
	return nil
}

func (m *memStore) ListCampaigns(offset, limit int, f repository.ListFilter) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range m.campaigns {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Type != "" && string(c.Type) != f.Type {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) ReconcileCounts(campaignID int) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok {
		return 0, 0, appErrors.NewCampaignNotFound(campaignID)
	}
	sent := 0
	for _, rec := range m.recipients {
		if rec.CampaignID != campaignID {
			continue
		}
		if (c.Type.IncludesEmail() && rec.EmailStatus.Succeeded()) ||
			(c.Type.IncludesSMS() && rec.SMSStatus.Succeeded()) {
			sent++
		}
	}
	c.SentCount = sent
	c.FailedCount = c.RecipientCount - sent
	return c.SentCount, c.FailedCount, nil
}

// ---- RecipientRepositoryInterface ----

func (m *memStore) GetRecipient(id int) (*model.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recipients[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) ListByCampaign(campaignID int) ([]*model.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Recipient{}
	for _, rec := range m.recipients {
		if rec.CampaignID == campaignID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListFailed(campaignID int) ([]*model.Recipient, error) {
	all, _ := m.ListByCampaign(campaignID)
	out := []*model.Recipient{}
	for _, rec := range all {
		if rec.NeedsRetry() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) MarkEmail(id int, status model.ChannelStatus, messageID, errText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recipients[id]
	if !ok {
		return fmt.Errorf("recipient %d not found", id)
	}
	rec.EmailStatus = status
	rec.EmailError = errText
	if messageID != "" {
		rec.EmailMessageID = messageID
	}
	if status.Succeeded() {
		now := time.Now()
		rec.EmailSentAt = &now
	}
	return nil
}

func (m *memStore) MarkSMS(id int, status model.ChannelStatus, messageID, errText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recipients[id]
	if !ok {
		return fmt.Errorf("recipient %d not found", id)
	}
	rec.SMSStatus = status
	rec.SMSError = errText
	if messageID != "" {
		rec.SMSMessageID = messageID
	}
	if status.Succeeded() {
		now := time.Now()
		rec.SMSSentAt = &now
	}
	return nil
}

func (m *memStore) StatusCounts(campaignID int) (map[string]map[string]int, error) {
	all, _ := m.ListByCampaign(campaignID)
	counts := map[string]map[string]int{
		"email": {"pending": 0, "sent": 0, "delivered": 0, "failed": 0, "bounced": 0},
		"sms":   {"pending": 0, "sent": 0, "delivered": 0, "failed": 0},
	}
	for _, rec := range all {
		counts["email"][string(rec.EmailStatus)]++
		counts["sms"][string(rec.SMSStatus)]++
	}
	return counts, nil
}

// ---- AssignmentRepositoryInterface ----

func (m *memStore) ResolveByAssignmentIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ResolvedTarget{}
	for _, id := range ids {
		for _, t := range m.targets {
			if t.Assignment == nil || t.Assignment.ID != id {
				continue
			}
			if approvedOnly && t.JobSeeker.RegistrationStatus != "approved" {
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobSeeker.ID < out[j].JobSeeker.ID })
	return out, nil
}

func (m *memStore) ResolveByJobSeekerIDs(ids []int, approvedOnly bool) ([]model.ResolvedTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ResolvedTarget{}
	for _, id := range ids {
		t, ok := m.targets[id]
		if !ok {
			continue
		}
		if approvedOnly && t.JobSeeker.RegistrationStatus != "approved" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) ResolveRecipient(rec *model.Recipient) (*model.ResolvedTarget, error) {
	if rec.BoothAssignmentID != nil {
		targets, err := m.ResolveByAssignmentIDs([]int{*rec.BoothAssignmentID}, false)
		if err != nil || len(targets) == 0 {
			return nil, err
		}
		return &targets[0], nil
	}
	targets, err := m.ResolveByJobSeekerIDs([]int{rec.JobSeekerID}, false)
	if err != nil || len(targets) == 0 {
		return nil, err
	}
	return &targets[0], nil
}

func (m *memStore) MarkNotified(assignmentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[assignmentID] = true
	return nil
}

// recipientRepoView adapts memStore to RecipientRepositoryInterface
// (GetByID clashes with the campaign repo method).
type recipientRepoView struct{ *memStore }

func (v recipientRepoView) GetByID(id int) (*model.Recipient, error) { return v.GetRecipient(id) }

// ---- channel fakes ----

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	failFor map[string]string // address -> error text
}

func (f *fakeEmailSender) Send(to, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.failFor[to]; ok {
		return "", fmt.Errorf("%s", msg)
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return fmt.Sprintf("email-%d", len(f.sent)), nil
}

type sentSMS struct {
	Phone   string
	Message string
}

type fakeSMSSender struct {
	mu      sync.Mutex
	sent    []sentSMS
	failFor map[string]string // phone -> error text
}

func (f *fakeSMSSender) SendBulk(recipients []channel.SMSRecipient, templateType, message string) (*channel.BulkSMSResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := map[string]string{}
	for _, r := range recipients {
		if msg, ok := f.failFor[r.PhoneNumber]; ok {
			return &channel.BulkSMSResult{Success: false, Error: msg}, fmt.Errorf("%s", msg)
		}
		f.sent = append(f.sent, sentSMS{Phone: r.PhoneNumber, Message: message})
		ids[r.PhoneNumber] = fmt.Sprintf("sms-%d", len(f.sent))
	}
	return &channel.BulkSMSResult{Success: true, MessageIDs: ids}, nil
}

// ---- helpers ----

func listAll() repository.ListFilter { return repository.ListFilter{} }

func newTestService(store *memStore, email *fakeEmailSender, sms *fakeSMSSender) *service.CampaignService {
	return &service.CampaignService{
		CampaignRepo:   store,
		RecipientRepo:  recipientRepoView{store},
		AssignmentRepo: store,
		Email:          email,
		SMS:            sms,
		EventName:      "Autumn Career Fair",
		SendDelay:      5 * time.Millisecond,
		Sleep:          func(time.Duration) {},
	}
}

func seekerTarget(id int, first, last, email, phone string) model.ResolvedTarget {
	return model.ResolvedTarget{
		JobSeeker: model.JobSeeker{ID: id, UserID: id, RegistrationStatus: "approved", CheckinPIN: fmt.Sprintf("%06d", 100000+id)},
		User:      model.User{ID: id, FirstName: first, LastName: last, Email: email, Phone: phone},
	}
}

func assignmentTarget(id int, seekerID int, first, email, phone string) model.ResolvedTarget {
	t := seekerTarget(seekerID, first, "", email, phone)
	t.Assignment = &model.BoothAssignment{
		ID:            id,
		JobSeekerID:   seekerID,
		BoothID:       1,
		InterviewDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		InterviewTime: "10:30",
		PIN:           fmt.Sprintf("%06d", 900000+id),
	}
	t.Booth = &model.Booth{ID: 1, EmployerID: 1, Number: "A-12", Location: "Main Hall"}
	t.Employer = &model.Employer{ID: 1, CompanyName: "Safari Analytics"}
	return t
}
