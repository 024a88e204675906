package data

import (
	"context"
	"errors"
	"sync"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
)

// ErrNotConnected is returned when no session is bound
var ErrNotConnected = errors.New("no active WhatsApp session")

// WhatsAppRepo implements repo.MessageRepo on top of whichever session is
// currently live. Sessions are rebuilt on reconnect, so the target is
// rebound each time.
type WhatsAppRepo struct {
	mu     sync.RWMutex
	sender repo.MessageRepo
}

// NewWhatsAppRepo creates an unbound repository
func NewWhatsAppRepo() *WhatsAppRepo {
	return &WhatsAppRepo{}
}

// Bind routes subsequent sends to sender. nil unbinds.
func (r *WhatsAppRepo) Bind(sender repo.MessageRepo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sender = sender
}

func (r *WhatsAppRepo) current() (repo.MessageRepo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sender == nil {
		return nil, ErrNotConnected
	}
	return r.sender, nil
}

// SendText sends a text message
func (r *WhatsAppRepo) SendText(ctx context.Context, chatID, text string) error {
	sender, err := r.current()
	if err != nil {
		return err
	}
	return sender.SendText(ctx, chatID, text)
}

// SendPresence shows a typing indicator
func (r *WhatsAppRepo) SendPresence(ctx context.Context, chatID string, presence domain.Presence) error {
	sender, err := r.current()
	if err != nil {
		return err
	}
	return sender.SendPresence(ctx, chatID, presence)
}
