package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
)

func setupTestGuestService() (*testEnv, GuestService) {
	env := newTestEnv()
	return env, NewGuestService(env.cfg, env.repo, env.logger)
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"712345678", "+255712345678"},
		{"0712345678", "+255712345678"},
		{"0712 345 678", "+255712345678"},
		{"255712345678", "+255712345678"},
		{"+255712345678", "+255712345678"},
		{"+1 555 123 4567", "+1 555 123 4567"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestAddGuest(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)

	g, err := svc.Add(context.Background(), testOwnerID, ev.ID, &dto.AddGuestRequest{Name: " Asha ", Phone: "0712000001"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if g.Name != "Asha" || g.Phone != "+255712000001" || g.GuestCount != 1 || g.Status != model.GuestStatusPending {
		t.Errorf("unexpected guest: %+v", g)
	}
	if !hex64.MatchString(g.RsvpToken) {
		t.Errorf("token %q is not 64 hex chars", g.RsvpToken)
	}
	if !strings.HasPrefix(g.QRCodeData, "data:image/png;base64,") {
		t.Errorf("QR data is not a PNG data URL: %.40s", g.QRCodeData)
	}
}

func TestAddGuest_DuplicatePhone(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	env.seedGuest(ev.ID, "Baraka", "+255712000002")

	_, err := svc.Add(context.Background(), testOwnerID, ev.ID, &dto.AddGuestRequest{Name: "Other", Phone: "712000002"})
	var dup *DuplicatePhoneError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePhoneError, got %v", err)
	}
	if dup.Error() != "Phone number +255712000002 is already registered for guest: Baraka" {
		t.Errorf("unexpected message: %q", dup.Error())
	}
}

func TestAddGuest_NotOwner(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)

	_, err := svc.Add(context.Background(), testOtherID, ev.ID, &dto.AddGuestRequest{Name: "X"})
	if !errors.Is(err, ErrEventForbidden) {
		t.Fatalf("expected ErrEventForbidden, got %v", err)
	}
}

func TestBulkAdd_CollectsRowErrors(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	env.seedGuest(ev.ID, "Existing", "+255700000000")

	res, err := svc.BulkAdd(context.Background(), testOwnerID, ev.ID, &dto.BulkAddGuestsRequest{Guests: []dto.AddGuestRequest{
		{Name: "One", Phone: "0711111111"},
		{Name: "Two", Phone: "711111111"},
		{Name: "Three", Phone: "0700000000"},
		{Name: "   "},
		{Name: "Five"},
	}})
	if err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}
	if res.Total != 5 || res.Added != 2 || res.Failed != 3 {
		t.Errorf("unexpected totals: %+v", res)
	}
	rows := []int{}
	for _, e := range res.Errors {
		rows = append(rows, e.Row)
	}
	if len(rows) != 3 || rows[0] != 2 || rows[1] != 3 || rows[2] != 4 {
		t.Errorf("unexpected error rows: %v", rows)
	}
}

func TestImport_CSVHeaderAliases(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)

	file := "Full Name,Mobile,Email_Address,Table_No,Number Of Guests,Dietary\n" +
		"Asha,0712000001,asha@example.com,T1,2,no nuts\n" +
		",0712000002,,,,\n" +
		"Baraka,0712000003,,,abc,\n" +
		"Chausiku,,,,,\n"

	res, err := svc.Import(context.Background(), testOwnerID, ev.ID, "guests.csv", strings.NewReader(file))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Added != 2 || res.Failed != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	var asha *model.Guest
	for i := range res.Guests {
		if res.Guests[i].Name == "Asha" {
			asha = &res.Guests[i]
		}
	}
	if asha == nil || asha.Email != "asha@example.com" || asha.TableNumber != "T1" || asha.GuestCount != 2 || asha.SpecialRequests != "no nuts" {
		t.Errorf("aliases not mapped: %+v", asha)
	}
}

func TestImport_XLSX(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Name", "Phone"},
		{"Asha", "0712000001"},
		{"NoPhone", ""},
		{"Baraka", "255712000002"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow("Sheet1", cell, &r)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	res, err := svc.Import(context.Background(), testOwnerID, ev.ID, "Guests.XLSX", buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Added != 2 {
		t.Fatalf("expected 2 guests, got %+v", res)
	}
}

func TestImport_Rejections(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	ctx := context.Background()

	if _, err := svc.Import(ctx, testOwnerID, ev.ID, "guests.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
	if _, err := svc.Import(ctx, testOwnerID, ev.ID, "guests.csv", strings.NewReader("name,phone\n,\n")); !errors.Is(err, ErrNoGuestData) {
		t.Errorf("expected ErrNoGuestData, got %v", err)
	}
	if _, err := svc.Import(ctx, testOwnerID, ev.ID, "", nil); !errors.Is(err, ErrNoFileUploaded) {
		t.Errorf("expected ErrNoFileUploaded, got %v", err)
	}
}

func TestCheckDuplicates_OnlyDelivered(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	sent := env.seedGuest(ev.ID, "Sent", "+255712000001")
	failed := env.seedGuest(ev.ID, "Failed", "+255712000002")
	ctx := context.Background()

	for _, tc := range []struct {
		g      *model.Guest
		status string
	}{{sent, model.MessageStatusSent}, {failed, model.MessageStatusFailed}} {
		id := tc.g.ID
		_ = env.messages.Create(ctx, &model.MessageLog{EventID: ev.ID, GuestID: &id, MessageType: "sms", Recipient: tc.g.Phone, Status: tc.status})
	}

	res, err := svc.CheckDuplicates(ctx, testOwnerID, ev.ID, &dto.CheckDuplicatesRequest{
		Phones: []string{"0712000001", "0712000002", "0712000003", "+255712000001"},
	})
	if err != nil {
		t.Fatalf("CheckDuplicates failed: %v", err)
	}
	if res.Count != 1 || res.Duplicates[0].GuestName != "Sent" {
		t.Errorf("unexpected duplicates: %+v", res)
	}
}

func TestUpdateGuest_AliasTaken(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	a := env.seedGuest(ev.ID, "A", "")
	b := env.seedGuest(ev.ID, "B", "")
	ctx := context.Background()

	alias := "family1"
	if _, err := svc.Update(ctx, testOwnerID, ev.ID, a.ID, &dto.UpdateGuestRequest{RsvpAlias: &alias}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := svc.Update(ctx, testOwnerID, ev.ID, b.ID, &dto.UpdateGuestRequest{RsvpAlias: &alias}); !errors.Is(err, ErrAliasTaken) {
		t.Fatalf("expected ErrAliasTaken, got %v", err)
	}
}

func TestDeleteGuest(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	g := env.seedGuest(ev.ID, "A", "")
	ctx := context.Background()

	if err := svc.Delete(ctx, testOwnerID, ev.ID, g.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, testOwnerID, ev.ID, g.ID); !errors.Is(err, ErrGuestNotFound) {
		t.Fatalf("expected ErrGuestNotFound, got %v", err)
	}
}

func TestExportGuests(t *testing.T) {
	env, svc := setupTestGuestService()
	ev := env.seedEvent(testOwnerID, model.EventStatusActive)
	g := env.seedGuest(ev.ID, "Asha", "+255712000001")
	ctx := context.Background()

	out, err := svc.Export(ctx, testOwnerID, ev.ID, "csv")
	if err != nil {
		t.Fatalf("Export csv failed: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out.Data.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != "Name" || records[1][0] != "Asha" {
		t.Fatalf("unexpected csv: %v", records)
	}
	if link := records[1][len(records[1])-1]; link != "https://alika.test/rsvp/"+g.RsvpToken {
		t.Errorf("unexpected rsvp link %q", link)
	}
	if out.Filename != "guests_amani_neema.csv" {
		t.Errorf("filename = %q", out.Filename)
	}

	out, err = svc.Export(ctx, testOwnerID, ev.ID, "xlsx")
	if err != nil {
		t.Fatalf("Export xlsx failed: %v", err)
	}
	wb, err := excelize.OpenReader(out.Data)
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer wb.Close()
	name, _ := wb.GetCellValue("Guests", "A2")
	if name != "Asha" {
		t.Errorf("A2 = %q, want Asha", name)
	}

	if _, err := svc.Export(ctx, testOwnerID, ev.ID, "pdf"); !errors.Is(err, ErrExportFormat) {
		t.Errorf("expected ErrExportFormat, got %v", err)
	}
}
