package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	pkgerrors "github.com/JoeSaf/Allika-sub000/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events     map[string]*model.Event
	settings   map[string]*model.RsvpSettings
	invitation map[string]*model.InvitationData
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		events:     make(map[string]*model.Event),
		settings:   make(map[string]*model.RsvpSettings),
		invitation: make(map[string]*model.InvitationData),
	}
}

func (m *mockEventRepo) Create(_ context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) GetDetail(ctx context.Context, id string) (*model.Event, error) {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.RsvpSettings = m.settings[id]
	e.InvitationData = m.invitation[id]
	return e, nil
}

func (m *mockEventRepo) ListByUser(_ context.Context, userID string, filter repository.EventFilter, offset, limit int) ([]model.EventListItem, int64, error) {
	var all []model.EventListItem
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Venue), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, model.EventListItem{Event: *e})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEventRepo) ListAllByUser(_ context.Context, userID string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	e, ok := m.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			e.Title = v.(string)
		case "venue":
			e.Venue = v.(string)
		case "status":
			e.Status = v.(string)
		case "type":
			e.Type = v.(string)
		case "date":
			e.Date = v.(*time.Time)
		case "time":
			e.Time = v.(string)
		}
	}
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) IncrementMessagesSent(_ context.Context, id string, n int) error {
	if e, ok := m.events[id]; ok {
		e.MessagesSent += n
	}
	return nil
}

func (m *mockEventRepo) GetSettings(_ context.Context, eventID string) (*model.RsvpSettings, error) {
	if s, ok := m.settings[eventID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) UpsertSettings(_ context.Context, s *model.RsvpSettings) error {
	m.settings[s.EventID] = s
	return nil
}

func (m *mockEventRepo) GetInvitationData(_ context.Context, eventID string) (*model.InvitationData, error) {
	if d, ok := m.invitation[eventID]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) UpsertInvitationData(_ context.Context, d *model.InvitationData) error {
	m.invitation[d.EventID] = d
	return nil
}

// ── Mock GuestRepository ──

type mockGuestRepo struct {
	guests  map[string]*model.Guest
	lookups int // number of read queries served
}

func newMockGuestRepo() *mockGuestRepo {
	return &mockGuestRepo{guests: make(map[string]*model.Guest)}
}

func (m *mockGuestRepo) find(match func(g *model.Guest) bool) (*model.Guest, error) {
	m.lookups++
	for _, g := range m.guests {
		if match(g) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGuestRepo) Create(_ context.Context, g *model.Guest) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = time.Now()
	cp := *g
	m.guests[g.ID] = &cp
	return nil
}

func (m *mockGuestRepo) GetByID(_ context.Context, id string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool { return g.ID == id })
}

func (m *mockGuestRepo) GetByEventAndID(_ context.Context, eventID, guestID string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool { return g.ID == guestID && g.EventID == eventID })
}

func (m *mockGuestRepo) GetByToken(_ context.Context, token string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool { return g.RsvpToken == token })
}

func (m *mockGuestRepo) GetByAlias(_ context.Context, alias string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool { return g.RsvpAlias != nil && *g.RsvpAlias == alias })
}

func (m *mockGuestRepo) GetByQR(_ context.Context, guestID, eventID, token string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool {
		return g.ID == guestID && g.EventID == eventID && g.RsvpToken == token
	})
}

func (m *mockGuestRepo) FindByEventAndPhone(_ context.Context, eventID, phone string) (*model.Guest, error) {
	return m.find(func(g *model.Guest) bool { return g.EventID == eventID && g.Phone == phone })
}

func (m *mockGuestRepo) ofEvent(eventID string, ids []string) []model.Guest {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Guest
	for _, g := range m.guests {
		if g.EventID != eventID || (len(ids) > 0 && !want[g.ID]) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *mockGuestRepo) List(_ context.Context, eventID string, filter repository.GuestFilter, offset, limit int) ([]model.Guest, int64, error) {
	var out []model.Guest
	for _, g := range m.ofEvent(eventID, nil) {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, g)
	}
	total := int64(len(out))
	if limit > 0 {
		if offset > len(out) {
			return nil, total, nil
		}
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, total, nil
}

func (m *mockGuestRepo) ListForMessaging(_ context.Context, eventID string, ids []string) ([]model.Guest, error) {
	return m.ofEvent(eventID, ids), nil
}

func (m *mockGuestRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	g, ok := m.guests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			g.Name = v.(string)
		case "email":
			g.Email = v.(string)
		case "phone":
			g.Phone = v.(string)
		case "table_number":
			g.TableNumber = v.(string)
		case "status":
			g.Status = v.(string)
		case "guest_count":
			g.GuestCount = v.(int)
		case "special_requests":
			g.SpecialRequests = v.(string)
		case "rsvp_alias":
			if v == nil {
				g.RsvpAlias = nil
			} else {
				alias := v.(string)
				for _, other := range m.guests {
					if other.ID != id && other.RsvpAlias != nil && *other.RsvpAlias == alias {
						return gorm.ErrDuplicatedKey
					}
				}
				g.RsvpAlias = &alias
			}
		}
	}
	return nil
}

func (m *mockGuestRepo) Delete(_ context.Context, eventID, guestID string) error {
	g, ok := m.guests[guestID]
	if !ok || g.EventID != eventID {
		return gorm.ErrRecordNotFound
	}
	delete(m.guests, guestID)
	return nil
}

func (m *mockGuestRepo) ApplyRsvp(_ context.Context, guestID string, upd repository.RsvpUpdate) error {
	g, ok := m.guests[guestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	at := upd.RespondedAt
	g.Status = upd.Status
	g.GuestCount = upd.GuestCount
	g.SpecialRequests = upd.SpecialRequests
	g.AdditionalFields = upd.AdditionalFields
	g.RsvpDate = &at
	return nil
}

func (m *mockGuestRepo) MarkCheckedIn(_ context.Context, guestID string, at time.Time) error {
	g, ok := m.guests[guestID]
	if !ok || g.CheckedIn {
		return pkgerrors.ErrNoRowsAffected
	}
	g.CheckedIn = true
	g.CheckInTime = &at
	return nil
}

func (m *mockGuestRepo) ClearCheckedIn(_ context.Context, guestID string) error {
	g, ok := m.guests[guestID]
	if !ok || !g.CheckedIn {
		return pkgerrors.ErrNoRowsAffected
	}
	g.CheckedIn = false
	g.CheckInTime = nil
	return nil
}

func (m *mockGuestRepo) Stats(_ context.Context, eventID string) (*model.GuestStats, error) {
	var s model.GuestStats
	for _, g := range m.ofEvent(eventID, nil) {
		s.TotalGuests++
		s.TotalGuestCount += int64(g.GuestCount)
		if g.CheckedIn {
			s.CheckedInCount++
		} else {
			s.NotCheckedInCount++
		}
		switch g.Status {
		case model.GuestStatusConfirmed:
			s.ConfirmedCount++
		case model.GuestStatusDeclined:
			s.DeclinedCount++
		default:
			s.PendingCount++
		}
	}
	return &s, nil
}

// ── Mock RsvpResponseRepository ──

type mockRsvpResponseRepo struct {
	responses map[string]*model.RsvpResponse // key: guest_id
	// hideExisting makes ExistsForGuest lie, simulating a concurrent submit
	hideExisting bool
}

func newMockRsvpResponseRepo() *mockRsvpResponseRepo {
	return &mockRsvpResponseRepo{responses: make(map[string]*model.RsvpResponse)}
}

func (m *mockRsvpResponseRepo) Create(_ context.Context, r *model.RsvpResponse) error {
	if _, ok := m.responses[r.GuestID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.responses[r.GuestID] = r
	return nil
}

func (m *mockRsvpResponseRepo) ExistsForGuest(_ context.Context, guestID string) (bool, error) {
	if m.hideExisting {
		return false, nil
	}
	_, ok := m.responses[guestID]
	return ok, nil
}

func (m *mockRsvpResponseRepo) LatestForGuest(_ context.Context, guestID string) (*model.RsvpResponse, error) {
	if r, ok := m.responses[guestID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRsvpResponseRepo) DailyCounts(_ context.Context, eventID string) ([]model.DailyCount, error) {
	counts := make(map[string]int64)
	for _, r := range m.responses {
		if r.EventID == eventID {
			counts[r.CreatedAt.Format("2006-01-02")]++
		}
	}
	return toDailyCounts(counts), nil
}

func toDailyCounts(counts map[string]int64) []model.DailyCount {
	var out []model.DailyCount
	for d, n := range counts {
		out = append(out, model.DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ── Mock CheckinLogRepository ──

type mockCheckinLogRepo struct {
	logs []model.CheckinLog
}

func (m *mockCheckinLogRepo) Create(_ context.Context, l *model.CheckinLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockCheckinLogRepo) ListByEvent(_ context.Context, eventID string, offset, limit int) ([]model.CheckinLogView, int64, error) {
	var out []model.CheckinLogView
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].EventID == eventID {
			out = append(out, model.CheckinLogView{CheckinLog: m.logs[i]})
		}
	}
	total := int64(len(out))
	if offset > len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockCheckinLogRepo) DailyCounts(_ context.Context, eventID string) ([]model.DailyCount, error) {
	counts := make(map[string]int64)
	for _, l := range m.logs {
		if l.EventID == eventID {
			counts[l.CheckInTime.Format("2006-01-02")]++
		}
	}
	return toDailyCounts(counts), nil
}

func (m *mockCheckinLogRepo) forGuest(guestID string) []model.CheckinLog {
	var out []model.CheckinLog
	for _, l := range m.logs {
		if l.GuestID == guestID {
			out = append(out, l)
		}
	}
	return out
}

// ── Mock MessageLogRepository ──

type mockMessageLogRepo struct {
	logs  map[string]*model.MessageLog
	order []string
}

func newMockMessageLogRepo() *mockMessageLogRepo {
	return &mockMessageLogRepo{logs: make(map[string]*model.MessageLog)}
}

func (m *mockMessageLogRepo) Create(_ context.Context, l *model.MessageLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	cp := *l
	m.logs[l.ID] = &cp
	m.order = append(m.order, l.ID)
	return nil
}

func (m *mockMessageLogRepo) GetByID(_ context.Context, id string) (*model.MessageLog, error) {
	if l, ok := m.logs[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageLogRepo) UpdateStatus(_ context.Context, id, status string, errMsg *string, sentAt *time.Time) error {
	l, ok := m.logs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Status = status
	l.ErrorMessage = errMsg
	if sentAt != nil {
		l.SentAt = sentAt
	}
	return nil
}

func (m *mockMessageLogRepo) all(eventID string) []*model.MessageLog {
	var out []*model.MessageLog
	for _, id := range m.order {
		if l := m.logs[id]; l.EventID == eventID {
			out = append(out, l)
		}
	}
	return out
}

func (m *mockMessageLogRepo) List(_ context.Context, eventID string, filter repository.MessageLogFilter, offset, limit int) ([]model.MessageLogView, int64, error) {
	var out []model.MessageLogView
	for _, l := range m.all(eventID) {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.MessageType != "" && l.MessageType != filter.MessageType {
			continue
		}
		out = append(out, model.MessageLogView{MessageLog: *l})
	}
	total := int64(len(out))
	if offset > len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockMessageLogRepo) ListFailed(_ context.Context, eventID string) ([]model.MessageLog, error) {
	var out []model.MessageLog
	for _, l := range m.all(eventID) {
		if l.Status == model.MessageStatusFailed {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockMessageLogRepo) HasDelivered(_ context.Context, eventID, guestID, recipient string) (bool, error) {
	for _, l := range m.all(eventID) {
		if l.GuestID != nil && *l.GuestID == guestID && l.Recipient == recipient &&
			(l.Status == model.MessageStatusSent || l.Status == model.MessageStatusDelivered) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMessageLogRepo) Stats(_ context.Context, eventID string) (*model.MessageStats, error) {
	var s model.MessageStats
	for _, l := range m.all(eventID) {
		s.TotalMessages++
		switch l.Status {
		case model.MessageStatusPending:
			s.PendingCount++
		case model.MessageStatusSent:
			s.SentCount++
		case model.MessageStatusDelivered:
			s.DeliveredCount++
		case model.MessageStatusFailed:
			s.FailedCount++
		}
		switch l.MessageType {
		case model.MessageTypeSMS:
			s.SMSCount++
		case model.MessageTypeWhatsApp:
			s.WhatsAppCount++
		case model.MessageTypeEmail:
			s.EmailCount++
		}
	}
	return &s, nil
}

// ── Mock AnalyticsRepository ──

type mockAnalyticsRepo struct {
	activity  []model.ActivityItem
	dashboard *model.DashboardStats

	users     *mockUserRepo
	guests    *mockGuestRepo
	responses *mockRsvpResponseRepo
	checkins  *mockCheckinLogRepo
	messages  *mockMessageLogRepo
}

func (m *mockAnalyticsRepo) RecentActivity(_ context.Context, _ string, limit int) ([]model.ActivityItem, error) {
	if len(m.activity) > limit {
		return m.activity[:limit], nil
	}
	return m.activity, nil
}

func (m *mockAnalyticsRepo) Dashboard(_ context.Context, _ string) (*model.DashboardStats, error) {
	if m.dashboard == nil {
		return &model.DashboardStats{}, nil
	}
	return m.dashboard, nil
}

// eventGuests returns the event's guests sorted by name.
func (m *mockAnalyticsRepo) eventGuests(eventID string) []model.Guest {
	var out []model.Guest
	for _, g := range m.guests.guests {
		if g.EventID == eventID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *mockAnalyticsRepo) GuestDetails(_ context.Context, eventID, status string, offset, limit int) ([]model.GuestDetail, int64, error) {
	var out []model.GuestDetail
	for _, g := range m.eventGuests(eventID) {
		if status != "" && g.Status != status {
			continue
		}
		d := model.GuestDetail{Guest: g}
		if r, ok := m.responses.responses[g.ID]; ok {
			resp, at := r.Response, r.CreatedAt
			d.LastResponse, d.ResponseDate = &resp, &at
		}
		if logs := m.checkins.forGuest(g.ID); g.CheckedIn && len(logs) > 0 {
			if by := logs[len(logs)-1].CheckedInBy; by != nil {
				if u, ok := m.users.users[*by]; ok {
					name := u.Name
					d.CheckedInByName = &name
				}
			}
		}
		out = append(out, d)
	}
	total := int64(len(out))
	if offset > len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockAnalyticsRepo) EventDump(_ context.Context, eventID string) (*model.EventDump, error) {
	dump := &model.EventDump{Guests: m.eventGuests(eventID)}
	for _, g := range dump.Guests {
		if r, ok := m.responses.responses[g.ID]; ok {
			dump.RsvpResponses = append(dump.RsvpResponses, *r)
		}
	}
	for _, l := range m.checkins.logs {
		if l.EventID == eventID {
			dump.CheckinLogs = append(dump.CheckinLogs, l)
		}
	}
	for _, l := range m.messages.all(eventID) {
		dump.MessageLogs = append(dump.MessageLogs, *l)
	}
	return dump, nil
}

// ── Test fixture ──

const (
	testOwnerID = "11111111-1111-4111-8111-111111111111"
	testOtherID = "22222222-2222-4222-8222-222222222222"
)

type testEnv struct {
	cfg       *config.Config
	repo      *repository.Repository
	users     *mockUserRepo
	events    *mockEventRepo
	guests    *mockGuestRepo
	responses *mockRsvpResponseRepo
	checkins  *mockCheckinLogRepo
	messages  *mockMessageLogRepo
	analytics *mockAnalyticsRepo
	logger    *zap.Logger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cfg: &config.Config{
			Server: config.ServerConfig{FrontendURL: "https://alika.test"},
			Auth: config.AuthConfig{
				JWTSecret:       "test-secret-key-at-least-16",
				AccessTokenTTL:  time.Hour,
				RefreshTokenTTL: 24 * time.Hour,
			},
		},
		users:     newMockUserRepo(),
		events:    newMockEventRepo(),
		guests:    newMockGuestRepo(),
		responses: newMockRsvpResponseRepo(),
		checkins:  &mockCheckinLogRepo{},
		messages:  newMockMessageLogRepo(),
		logger:    zap.NewNop(),
	}
	env.analytics = &mockAnalyticsRepo{
		users:     env.users,
		guests:    env.guests,
		responses: env.responses,
		checkins:  env.checkins,
		messages:  env.messages,
	}
	env.repo = &repository.Repository{
		User:         env.users,
		Event:        env.events,
		Guest:        env.guests,
		RsvpResponse: env.responses,
		CheckinLog:   env.checkins,
		MessageLog:   env.messages,
		Analytics:    env.analytics,
	}
	return env
}

func (e *testEnv) seedEvent(ownerID, status string) *model.Event {
	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)
	ev := &model.Event{
		UserID:   ownerID,
		Title:    "Amani & Neema",
		Type:     "wedding",
		Date:     &date,
		Time:     "16:00",
		Venue:    "Serena Hotel",
		DateLang: "en",
		Status:   status,
	}
	_ = e.events.Create(context.Background(), ev)
	return ev
}

func (e *testEnv) seedGuest(eventID, name, phone string) *model.Guest {
	token, _ := newRsvpToken()
	g := &model.Guest{
		EventID:    eventID,
		Name:       name,
		Phone:      phone,
		Status:     model.GuestStatusPending,
		GuestCount: 1,
		RsvpToken:  token,
	}
	g.ID = uuid.NewString()
	_ = e.guests.Create(context.Background(), g)
	return e.guests.guests[g.ID]
}
