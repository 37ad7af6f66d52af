//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	"github.com/JoeSaf/Allika-sub000/pkg/database"
	pkgerrors "github.com/JoeSaf/Allika-sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=alika password=alika dbname=alika_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupEvent creates an organizer with one active event. Cleanup deletes the
// user, which cascades to everything else.
func setupEvent(t *testing.T) (*repository.Repository, *model.User, *model.Event) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	user := &model.User{
		Name:         "Neema",
		Email:        fmt.Sprintf("neema-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
	}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)
	event := &model.Event{
		UserID: user.ID,
		Title:  "Amani & Neema",
		Type:   "wedding",
		Date:   &date,
		Status: model.EventStatusActive,
	}
	if err := repo.Event.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	t.Cleanup(func() {
		testDB.Exec("DELETE FROM users WHERE id = ?", user.ID)
	})
	return repo, user, event
}

func addGuest(t *testing.T, repo *repository.Repository, eventID, name, phone string) *model.Guest {
	t.Helper()
	g := &model.Guest{
		EventID:    eventID,
		Name:       name,
		Phone:      phone,
		Status:     "pending",
		GuestCount: 1,
		RsvpToken:  fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
	}
	if err := repo.Guest.Create(context.Background(), g); err != nil {
		t.Fatalf("create guest %s: %v", name, err)
	}
	return g
}

// ═══════════════════════════════════════════════════════════
// Guest check-in guards
// ═══════════════════════════════════════════════════════════

func TestGuestRepo_CheckInGuards(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "+255712000001")

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.Guest.MarkCheckedIn(ctx, g.ID, at); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if err := repo.Guest.MarkCheckedIn(ctx, g.ID, at); !errors.Is(err, pkgerrors.ErrNoRowsAffected) {
		t.Fatalf("second check-in: expected ErrNoRowsAffected, got %v", err)
	}

	got, err := repo.Guest.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.CheckedIn || got.CheckInTime == nil || !got.CheckInTime.Equal(at) {
		t.Errorf("unexpected check-in state: %v %v", got.CheckedIn, got.CheckInTime)
	}

	if err := repo.Guest.ClearCheckedIn(ctx, g.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := repo.Guest.ClearCheckedIn(ctx, g.ID); !errors.Is(err, pkgerrors.ErrNoRowsAffected) {
		t.Fatalf("second undo: expected ErrNoRowsAffected, got %v", err)
	}
}

func TestGuestRepo_Stats(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()

	a := addGuest(t, repo, event.ID, "Asha", "+255712000001")
	b := addGuest(t, repo, event.ID, "Baraka", "+255712000002")
	addGuest(t, repo, event.ID, "Chausiku", "")

	if err := repo.Guest.ApplyRsvp(ctx, a.ID, repository.RsvpUpdate{Status: "confirmed", GuestCount: 3, RespondedAt: time.Now()}); err != nil {
		t.Fatalf("apply rsvp: %v", err)
	}
	if err := repo.Guest.ApplyRsvp(ctx, b.ID, repository.RsvpUpdate{Status: "declined", GuestCount: 1, RespondedAt: time.Now()}); err != nil {
		t.Fatalf("apply rsvp: %v", err)
	}
	if err := repo.Guest.MarkCheckedIn(ctx, a.ID, time.Now()); err != nil {
		t.Fatalf("check in: %v", err)
	}

	stats, err := repo.Guest.Stats(ctx, event.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := model.GuestStats{
		TotalGuests:       3,
		CheckedInCount:    1,
		NotCheckedInCount: 2,
		ConfirmedCount:    1,
		DeclinedCount:     1,
		PendingCount:      1,
		TotalGuestCount:   5,
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestGuestRepo_FindByEventAndPhone(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	addGuest(t, repo, event.ID, "Asha", "+255712000001")

	g, err := repo.Guest.FindByEventAndPhone(ctx, event.ID, "+255712000001")
	if err != nil || g.Name != "Asha" {
		t.Fatalf("expected Asha, got %v, %v", g, err)
	}
	if _, err := repo.Guest.FindByEventAndPhone(ctx, event.ID, "+255712999999"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// RSVP responses
// ═══════════════════════════════════════════════════════════

func TestRsvpResponseRepo_OnePerGuest(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "")

	first := &model.RsvpResponse{GuestID: g.ID, EventID: event.ID, Response: model.RsvpConfirmed, GuestCount: 2}
	if err := repo.RsvpResponse.Create(ctx, first); err != nil {
		t.Fatalf("first response: %v", err)
	}
	second := &model.RsvpResponse{GuestID: g.ID, EventID: event.ID, Response: model.RsvpDeclined, GuestCount: 1}
	if err := repo.RsvpResponse.Create(ctx, second); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second response: expected ErrDuplicatedKey, got %v", err)
	}

	exists, err := repo.RsvpResponse.ExistsForGuest(ctx, g.ID)
	if err != nil || !exists {
		t.Fatalf("ExistsForGuest = %v, %v", exists, err)
	}
}

// ═══════════════════════════════════════════════════════════
// Message logs
// ═══════════════════════════════════════════════════════════

func TestMessageLogRepo_HasDeliveredAndStats(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "+255712000001")

	failed := &model.MessageLog{EventID: event.ID, GuestID: &g.ID, MessageType: model.MessageTypeSMS, Recipient: g.Phone, Status: model.MessageStatusFailed}
	if err := repo.MessageLog.Create(ctx, failed); err != nil {
		t.Fatalf("create log: %v", err)
	}
	ok, err := repo.MessageLog.HasDelivered(ctx, event.ID, g.ID, g.Phone)
	if err != nil || ok {
		t.Fatalf("failed send must not count as delivered: %v, %v", ok, err)
	}

	sentAt := time.Now()
	if err := repo.MessageLog.UpdateStatus(ctx, failed.ID, model.MessageStatusSent, nil, &sentAt); err != nil {
		t.Fatalf("update status: %v", err)
	}
	ok, err = repo.MessageLog.HasDelivered(ctx, event.ID, g.ID, g.Phone)
	if err != nil || !ok {
		t.Fatalf("sent message should count as delivered: %v, %v", ok, err)
	}

	wa := &model.MessageLog{EventID: event.ID, GuestID: &g.ID, MessageType: model.MessageTypeWhatsApp, Recipient: g.Phone, Status: model.MessageStatusPending}
	if err := repo.MessageLog.Create(ctx, wa); err != nil {
		t.Fatalf("create log: %v", err)
	}

	stats, err := repo.MessageLog.Stats(ctx, event.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalMessages != 2 || stats.SentCount != 1 || stats.PendingCount != 1 || stats.WhatsAppCount != 1 || stats.SMSCount != 1 {
		t.Errorf("unexpected stats: %+v", *stats)
	}
}

// ═══════════════════════════════════════════════════════════
// Analytics
// ═══════════════════════════════════════════════════════════

func TestAnalyticsRepo_GuestDetails(t *testing.T) {
	repo, user, event := setupEvent(t)
	ctx := context.Background()
	a := addGuest(t, repo, event.ID, "Asha", "")
	addGuest(t, repo, event.ID, "Baraka", "")

	if err := repo.RsvpResponse.Create(ctx, &model.RsvpResponse{GuestID: a.ID, EventID: event.ID, Response: model.RsvpConfirmed, GuestCount: 1}); err != nil {
		t.Fatalf("response: %v", err)
	}
	if err := repo.Guest.ApplyRsvp(ctx, a.ID, repository.RsvpUpdate{Status: "confirmed", GuestCount: 1, RespondedAt: time.Now()}); err != nil {
		t.Fatalf("apply rsvp: %v", err)
	}
	at := time.Now().UTC()
	if err := repo.Guest.MarkCheckedIn(ctx, a.ID, at); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if err := repo.CheckinLog.Create(ctx, &model.CheckinLog{GuestID: a.ID, EventID: event.ID, CheckedInBy: &user.ID, CheckInTime: at}); err != nil {
		t.Fatalf("log: %v", err)
	}

	guests, total, err := repo.Analytics.GuestDetails(ctx, event.ID, "", 0, 50)
	if err != nil {
		t.Fatalf("GuestDetails: %v", err)
	}
	if total != 2 || len(guests) != 2 {
		t.Fatalf("expected 2 guests, got %d (total %d)", len(guests), total)
	}
	var asha *model.GuestDetail
	for i := range guests {
		if guests[i].ID == a.ID {
			asha = &guests[i]
		}
	}
	if asha == nil {
		t.Fatal("Asha missing from details")
	}
	if asha.LastResponse == nil || *asha.LastResponse != model.RsvpConfirmed || asha.ResponseDate == nil {
		t.Errorf("response details missing: %+v", asha)
	}
	if asha.CheckedInByName == nil || *asha.CheckedInByName != "Neema" || asha.CheckInTime == nil {
		t.Errorf("check-in details missing: %+v", asha)
	}

	if err := repo.Guest.ClearCheckedIn(ctx, a.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	confirmed, total, err := repo.Analytics.GuestDetails(ctx, event.ID, "confirmed", 0, 50)
	if err != nil || total != 1 {
		t.Fatalf("status filter: total %d, err %v", total, err)
	}
	if confirmed[0].CheckedInByName != nil {
		t.Errorf("staff name reported after undo: %v", *confirmed[0].CheckedInByName)
	}
}

func TestAnalyticsRepo_EventDump(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "+255712000001")
	addGuest(t, repo, event.ID, "Baraka", "")

	if err := repo.MessageLog.Create(ctx, &model.MessageLog{EventID: event.ID, GuestID: &g.ID, MessageType: model.MessageTypeSMS, Recipient: g.Phone, Status: model.MessageStatusSent}); err != nil {
		t.Fatalf("message: %v", err)
	}

	dump, err := repo.Analytics.EventDump(ctx, event.ID)
	if err != nil {
		t.Fatalf("EventDump: %v", err)
	}
	if len(dump.Guests) != 2 || dump.Guests[0].Name != "Asha" {
		t.Errorf("guests not in creation order: %+v", dump.Guests)
	}
	if len(dump.MessageLogs) != 1 || len(dump.RsvpResponses) != 0 || len(dump.CheckinLogs) != 0 {
		t.Errorf("unexpected dump sizes: %d messages, %d responses, %d checkins",
			len(dump.MessageLogs), len(dump.RsvpResponses), len(dump.CheckinLogs))
	}
}

// ═══════════════════════════════════════════════════════════
// Event lifecycle
// ═══════════════════════════════════════════════════════════

func TestEventRepo_DeleteCascades(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "")

	if err := repo.Event.Delete(ctx, event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Guest.GetByID(ctx, g.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("guest should be gone with its event, got %v", err)
	}
	if err := repo.Event.Delete(ctx, event.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: expected ErrRecordNotFound, got %v", err)
	}
}

func TestRepository_TransactionRollback(t *testing.T) {
	repo, _, event := setupEvent(t)
	ctx := context.Background()
	g := addGuest(t, repo, event.ID, "Asha", "")

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.WithTx(tx).Guest.MarkCheckedIn(ctx, g.ID, time.Now()); err != nil {
		t.Fatalf("check in inside tx: %v", err)
	}
	tx.Rollback()

	got, err := repo.Guest.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CheckedIn {
		t.Error("rolled back check-in must not persist")
	}
}
