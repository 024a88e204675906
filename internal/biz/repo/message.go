package repo

import (
	"context"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// MessageRepo sends messages and presence updates to a conversation
type MessageRepo interface {
	// SendText sends a text message
	SendText(ctx context.Context, chatID, text string) error

	// SendPresence shows a typing indicator to the remote party
	SendPresence(ctx context.Context, chatID string, presence domain.Presence) error
}
