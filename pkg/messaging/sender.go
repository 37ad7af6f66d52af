// Package messaging delivers guest invitations over SMS, WhatsApp and email
// behind one Sender contract.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Channel names match message_logs.message_type.
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// ErrNotConfigured is returned for a channel with no usable sender.
var ErrNotConfigured = errors.New("sender not configured")

// ErrNoRecipient is returned when the guest lacks the address a channel needs.
var ErrNoRecipient = errors.New("no recipient address")

// Message is one outbound invitation.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message over one channel. Implementations must be safe
// for concurrent use.
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg Message) error
}

// Registry resolves a Sender per channel.
type Registry struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[string]Sender, len(senders))}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the sender for its channel.
func (r *Registry) Register(s Sender) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.senders[s.Channel()] = s
	r.mu.Unlock()
}

// Get returns the sender for channel, or an error wrapping ErrNotConfigured.
func (r *Registry) Get(channel string) (Sender, error) {
	r.mu.RLock()
	s, ok := r.senders[channel]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s %w", channel, ErrNotConfigured)
	}
	return s, nil
}

// Channels lists the configured channels.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.senders))
	for ch := range r.senders {
		out = append(out, ch)
	}
	return out
}
