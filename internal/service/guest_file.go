package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// ── Guest import / export files ──────────────────────────────
//
// CSV imports map header aliases onto guest fields. XLSX imports read the
// first sheet with column A = name and column B = phone; rows missing
// either are skipped. Exports write the full guest list in either format.
// ─────────────────────────────────────────────────────────────

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	guestSheetName = "Guests"
)

var (
	ErrNoGuestData     = errors.New("No valid guest data found in file")
	ErrUnsupportedFile = errors.New("Only CSV and Excel (.xlsx) files are allowed")
	ErrExportFormat    = errors.New("Export format must be csv or xlsx")
)

// importedRow is a parsed file row with its 1-based line number.
type importedRow struct {
	Line  int
	Guest dto.AddGuestRequest
}

// csvColumns maps normalized header names to guest fields.
var csvColumns = map[string]string{
	"name":             "name",
	"fullname":         "name",
	"full_name":        "name",
	"guest_name":       "name",
	"email":            "email",
	"email_address":    "email",
	"phone":            "phone",
	"phone_number":     "phone",
	"mobile":           "phone",
	"table":            "table",
	"table_number":     "table",
	"table_no":         "table",
	"guests":           "guests",
	"guest_count":      "guests",
	"number_of_guests": "guests",
	"requests":         "requests",
	"special_requests": "requests",
	"dietary":          "requests",
}

// detectFormat picks the parser from the upload's file name.
func detectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFile
}

// parseGuestFile reads guest rows from r. Rows that cannot be used are
// returned as RowErrors rather than failing the whole file.
func parseGuestFile(format string, r io.Reader) ([]importedRow, []dto.RowError, error) {
	var (
		rows    []importedRow
		rowErrs []dto.RowError
		err     error
	)
	switch format {
	case FormatCSV:
		rows, rowErrs, err = parseGuestCSV(r)
	case FormatXLSX:
		rows, err = parseGuestXLSX(r)
	default:
		return nil, nil, ErrUnsupportedFile
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, rowErrs, ErrNoGuestData
	}
	return rows, rowErrs, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.Fields(h), "_")
}

func parseGuestCSV(r io.Reader) ([]importedRow, []dto.RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrNoGuestData
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		if field, ok := csvColumns[normalizeHeader(h)]; ok {
			if _, seen := cols[field]; !seen {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, ErrNoGuestData
	}

	get := func(rec []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []importedRow
	var rowErrs []dto.RowError
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, dto.RowError{Row: line, Reason: err.Error()})
			continue
		}

		name := get(rec, "name")
		if name == "" {
			if strings.Join(rec, "") != "" {
				rowErrs = append(rowErrs, dto.RowError{Row: line, Reason: "Name is required"})
			}
			continue
		}

		guest := dto.AddGuestRequest{
			Name:            name,
			Email:           get(rec, "email"),
			Phone:           get(rec, "phone"),
			TableNumber:     get(rec, "table"),
			SpecialRequests: get(rec, "requests"),
		}
		if v := get(rec, "guests"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				rowErrs = append(rowErrs, dto.RowError{Row: line, Name: name, Reason: "Invalid guest count: " + v})
				continue
			}
			guest.GuestCount = n
		}
		rows = append(rows, importedRow{Line: line, Guest: guest})
	}
	return rows, rowErrs, nil
}

func parseGuestXLSX(r io.Reader) ([]importedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	var rows []importedRow
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		name, phone := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if name == "" || phone == "" {
			continue
		}
		if i == 0 && csvColumns[normalizeHeader(name)] == "name" {
			continue
		}
		rows = append(rows, importedRow{Line: i + 1, Guest: dto.AddGuestRequest{Name: name, Phone: phone}})
	}
	return rows, nil
}

// ── Export ──

var exportHeader = []string{
	"Name", "Email", "Phone", "Table", "Status", "Guest Count",
	"Checked In", "Check-in Time", "RSVP Date", "Special Requests", "RSVP Link",
}

func exportRow(g *model.Guest, rsvpBase string) []string {
	checkedIn := "No"
	if g.CheckedIn {
		checkedIn = "Yes"
	}
	return []string{
		g.Name, g.Email, g.Phone, g.TableNumber, g.Status, strconv.Itoa(g.GuestCount),
		checkedIn, formatTimePtr(g.CheckInTime), formatTimePtr(g.RsvpDate), g.SpecialRequests,
		rsvpBase + g.RsvpToken,
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeGuestsCSV(guests []model.Guest, rsvpBase string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range guests {
		if err := w.Write(exportRow(&guests[i], rsvpBase)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf, w.Error()
}

func writeGuestsXLSX(guests []model.Guest, rsvpBase string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(guestSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// drop the default sheet
	f.DeleteSheet("Sheet1")

	f.SetColWidth(guestSheetName, "A", "A", 24)
	f.SetColWidth(guestSheetName, "B", "C", 22)
	f.SetColWidth(guestSheetName, "H", "I", 22)
	f.SetColWidth(guestSheetName, "J", "K", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0D9488"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeader {
		f.SetCellValue(guestSheetName, cellName(i, 1), h)
	}
	f.SetCellStyle(guestSheetName, cellName(0, 1), cellName(len(exportHeader)-1, 1), headerStyle)
	f.SetPanes(guestSheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r := range guests {
		for c, v := range exportRow(&guests[r], rsvpBase) {
			f.SetCellValue(guestSheetName, cellName(c, r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
