package dto

import "github.com/JoeSaf/Allika-sub000/internal/model"

// ── Messaging ──

// SendInvitesRequest sends invitations over one channel. Empty GuestIDs
// means every guest of the event.
type SendInvitesRequest struct {
	MessageType   string   `json:"messageType"   binding:"required,oneof=sms whatsapp email"`
	GuestIDs      []string `json:"guestIds"      binding:"omitempty,max=1000,dive,uuid"`
	CustomMessage string   `json:"customMessage" binding:"omitempty,max=2000"`
}

// SendOutcome is the result of one delivery attempt.
type SendOutcome struct {
	GuestID   string `json:"guestId,omitempty"`
	GuestName string `json:"guestName,omitempty"`
	Recipient string `json:"recipient"`
	LogID     string `json:"logId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// SendInvitesResponse summarizes a send or retry run.
type SendInvitesResponse struct {
	Total   int           `json:"total"`
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Results []SendOutcome `json:"results"`
}

// MessageLogListRequest filters the message history.
type MessageLogListRequest struct {
	PaginationRequest
	Status      string `form:"status"      binding:"omitempty,oneof=pending sent delivered failed"`
	MessageType string `form:"messageType" binding:"omitempty,oneof=sms whatsapp email"`
}

// MessageSummary adds the delivery rate to the raw counters.
type MessageSummary struct {
	*model.MessageStats
	DeliveryRate int `json:"delivery_rate"`
}

// Add tallies one outcome.
func (r *SendInvitesResponse) Add(o SendOutcome) {
	r.Total++
	if o.Status == model.MessageStatusFailed {
		r.Failed++
	} else {
		r.Sent++
	}
	r.Results = append(r.Results, o)
}
