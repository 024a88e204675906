package domain

import (
	"strings"
	"time"
)

// Payload is an inbound message body. Only the shapes below carry text;
// anything else the transport delivers is treated as having no text.
type Payload interface {
	payloadKind() string
}

// ConversationText is a plain chat message.
type ConversationText struct {
	Text string
}

func (ConversationText) payloadKind() string { return "conversation" }

// ExtendedText is a message with a quote, link preview or similar attached.
type ExtendedText struct {
	Text string
}

func (ExtendedText) payloadKind() string { return "extended_text" }

// ExtractText returns the text carried by p, or "" for unknown shapes.
func ExtractText(p Payload) string {
	switch v := p.(type) {
	case ConversationText:
		return v.Text
	case *ConversationText:
		if v != nil {
			return v.Text
		}
	case ExtendedText:
		return v.Text
	case *ExtendedText:
		if v != nil {
			return v.Text
		}
	}
	return ""
}

// Message represents an inbound chat message
type Message struct {
	ID        string
	ChatID    string // Conversation handle replies are sent to
	SenderID  string
	FromMe    bool // Sent by the bridge's own account
	Payload   Payload
	Timestamp time.Time
}

// Text extracts the message text
func (m *Message) Text() string {
	if m == nil || m.Payload == nil {
		return ""
	}
	return ExtractText(m.Payload)
}

// HasText reports whether the message carries non-blank text
func (m *Message) HasText() bool {
	return strings.TrimSpace(m.Text()) != ""
}

// Presence is a transient typing indicator shown to the remote party
type Presence string

const (
	PresenceComposing Presence = "composing"
	PresencePaused    Presence = "paused"
)
