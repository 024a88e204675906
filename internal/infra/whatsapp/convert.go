package whatsapp

import (
	"fmt"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
)

// convertMessage maps a library message event to a bridge message.
// Returns nil for events without a message body.
func convertMessage(evt *events.Message) *domain.Message {
	if evt == nil || evt.Message == nil {
		return nil
	}

	return &domain.Message{
		ID:        string(evt.Info.ID),
		ChatID:    evt.Info.Chat.String(),
		SenderID:  evt.Info.Sender.String(),
		FromMe:    evt.Info.IsFromMe,
		Payload:   payloadOf(evt.Message),
		Timestamp: evt.Info.Timestamp,
	}
}

// payloadOf picks the text-carrying shape of msg, nil when there is none
func payloadOf(msg *waE2E.Message) domain.Payload {
	if text := msg.GetConversation(); text != "" {
		return domain.ConversationText{Text: text}
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return domain.ExtendedText{Text: ext.GetText()}
	}
	return nil
}

// keepAliveMaxFailures is how many keepalive pings in a row may go
// unanswered before the connection is treated as dead
const keepAliveMaxFailures = 3

// closeReasonFor classifies a library event. ok is false for events that do
// not end the connection.
func closeReasonFor(evt any) (reason domain.CloseReason, ok bool) {
	switch e := evt.(type) {
	case *events.LoggedOut:
		return domain.CloseReason{
			LoggedOut:  true,
			StatusCode: int(e.Reason),
			Detail:     "logged out: " + e.Reason.String(),
		}, true
	case *events.ConnectFailure:
		return domain.CloseReason{
			LoggedOut:  e.Reason.IsLoggedOut(),
			StatusCode: int(e.Reason),
			Detail:     "connect failure: " + e.Reason.String(),
		}, true
	case *events.TemporaryBan:
		return domain.CloseReason{
			StatusCode: int(e.Code),
			Detail:     fmt.Sprintf("temporary ban: %s (expires in %s)", e.Code.String(), e.Expire),
		}, true
	case *events.ClientOutdated:
		return domain.CloseReason{StatusCode: int(events.ConnectFailureClientOutdated), Detail: "client outdated"}, true
	case *events.CATRefreshError:
		return domain.CloseReason{Detail: fmt.Sprintf("CAT refresh failed: %v", e.Error)}, true
	case *events.KeepAliveTimeout:
		if e.ErrorCount < keepAliveMaxFailures {
			return domain.CloseReason{}, false
		}
		return domain.CloseReason{Detail: fmt.Sprintf("keepalive timed out %d times", e.ErrorCount)}, true
	case *events.StreamReplaced:
		return domain.CloseReason{Detail: "stream replaced"}, true
	case *events.Disconnected:
		return domain.CloseReason{Detail: "connection lost"}, true
	}
	return domain.CloseReason{}, false
}
