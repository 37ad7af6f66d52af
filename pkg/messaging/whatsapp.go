package messaging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	goqrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
)

// WhatsAppSender sends text messages through a linked WhatsApp device.
// The device session lives in a sqlite file under DataDir.
type WhatsAppSender struct {
	client *whatsmeow.Client
	logger *zap.Logger

	mu        sync.Mutex
	connected bool
}

func NewWhatsAppSender(ctx context.Context, cfg *config.WhatsAppConfig, logger *zap.Logger) (*WhatsAppSender, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create whatsapp data dir: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("open whatsapp store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load whatsapp device: %w", err)
	}

	return &WhatsAppSender{
		client: whatsmeow.NewClient(device, nil),
		logger: logger.With(zap.String("component", "whatsapp")),
	}, nil
}

func (s *WhatsAppSender) Channel() string { return ChannelWhatsApp }

// Connect opens the session. An unpaired device prints a pairing QR code to
// stdout and keeps listening for login events in the background.
func (s *WhatsAppSender) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}

	if s.client.Store.ID == nil {
		qrChan, err := s.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("whatsapp qr channel: %w", err)
		}
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("whatsapp connect: %w", err)
		}
		go s.watchPairing(qrChan)
	} else if err := s.client.Connect(); err != nil {
		return fmt.Errorf("whatsapp connect: %w", err)
	}

	s.connected = true
	return nil
}

func (s *WhatsAppSender) watchPairing(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if evt.Event != "code" {
			s.logger.Info("whatsapp pairing event", zap.String("event", evt.Event))
			continue
		}
		q, err := goqrcode.New(evt.Code, goqrcode.Medium)
		if err != nil {
			s.logger.Warn("render pairing qr failed", zap.Error(err))
			continue
		}
		fmt.Println(q.ToSmallString(false))
		s.logger.Info("scan the QR code above from WhatsApp > Linked Devices")
	}
}

// Close disconnects the session.
func (s *WhatsAppSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		s.client.Disconnect()
		s.connected = false
	}
}

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	phone := digitsOnly(msg.To)
	if phone == "" {
		return ErrNoRecipient
	}
	if !s.client.IsConnected() {
		return fmt.Errorf("whatsapp %w: session not connected", ErrNotConfigured)
	}

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phone})
	if err != nil {
		return fmt.Errorf("verify whatsapp number: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phone)
	}

	body := msg.Body
	sent, err := s.client.SendMessage(ctx, resp[0].JID, &waE2E.Message{Conversation: &body})
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	s.logger.Debug("whatsapp message sent", zap.String("jid", resp[0].JID.String()), zap.String("id", sent.ID))
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
