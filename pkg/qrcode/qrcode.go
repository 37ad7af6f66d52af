// Package qrcode builds and parses the check-in payload embedded in guest QR
// codes.
package qrcode

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	goqrcode "github.com/skip2/go-qrcode"
)

// PayloadType marks a guest check-in QR code.
const PayloadType = "guest_checkin"

const dataURLPrefix = "data:image/png;base64,"

// DefaultSize is the rendered PNG edge length in pixels.
const DefaultSize = 300

var (
	ErrEmpty       = errors.New("QR code data is required")
	ErrMalformed   = errors.New("Invalid QR code data format")
	ErrWrongType   = errors.New("QR code is not a guest check-in code")
	ErrInvalidData = errors.New("QR code data is invalid")
)

// Payload is the JSON encoded into every guest QR code. Timestamp is the
// creation time in epoch milliseconds and is not used for expiry.
type Payload struct {
	Type      string `json:"type"      validate:"required,eq=guest_checkin"`
	GuestID   string `json:"guestId"   validate:"required,uuid"`
	EventID   string `json:"eventId"   validate:"required,uuid"`
	Token     string `json:"token"     validate:"required,len=64,hexadecimal"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewPayload stamps a payload for a guest at now.
func NewPayload(guestID, eventID, token string, now time.Time) Payload {
	return Payload{
		Type:      PayloadType,
		GuestID:   guestID,
		EventID:   eventID,
		Token:     token,
		Timestamp: now.UnixMilli(),
	}
}

// Encode renders the payload to a PNG data URL.
func Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}
	png, err := goqrcode.Encode(string(raw), goqrcode.Medium, DefaultSize)
	if err != nil {
		return "", fmt.Errorf("render qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// Parse decodes scanned QR text. The type field is checked before any other
// field so foreign codes are rejected early.
func Parse(raw string) (*Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmpty
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, ErrMalformed
	}

	if p.Type != PayloadType {
		return nil, ErrWrongType
	}

	if err := validate.Struct(&p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidData, verrs[0].Field())
		}
		return nil, ErrInvalidData
	}

	p.Token = strings.ToLower(p.Token)
	return &p, nil
}

// DecodeDataURL returns the PNG bytes of a data URL produced by Encode.
func DecodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return nil, ErrMalformed
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataURLPrefix))
}
