package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"unicode"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
)

var (
	ErrEventNotFound  = errors.New("Event not found")
	ErrEventForbidden = errors.New("Access denied. You do not own this event.")
)

// loadOwnedEvent fetches an event and checks that userID owns it.
func loadOwnedEvent(ctx context.Context, repo *repository.Repository, eventID, userID string) (*model.Event, error) {
	event, err := repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.UserID != userID {
		return nil, ErrEventForbidden
	}
	return event, nil
}

// newRsvpToken returns 32 random bytes as lowercase hex.
func newRsvpToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// FormatPhone normalizes Tanzanian numbers to +255 form. Anything it does
// not recognize is returned trimmed but otherwise unchanged.
func FormatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 9 && strings.HasPrefix(digits, "7"):
		return "+255" + digits
	case len(digits) == 10 && strings.HasPrefix(digits, "07"):
		return "+255" + digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "255"):
		return "+" + digits
	}
	return phone
}

// percent returns round(part/total*100), 0 when total is 0.
func percent(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// toJSON marshals an optional map/slice into a JSON column value.
func toJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return datatypes.JSON(b), nil
}

// rollbackTx and commitTx tolerate the nil tx of a mock-backed Repository.
func rollbackTx(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func commitTx(tx *gorm.DB) error {
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}
