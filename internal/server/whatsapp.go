package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/whatsapp"
	"github.com/DevRickLin/wa-gemini-bridge/internal/service"
)

// seenTTL is how long message ids are remembered for deduplication
const seenTTL = 5 * time.Minute

// Session is one connection to the messaging network
type Session interface {
	repo.MessageRepo

	OnMessage(handler whatsapp.MessageHandler)
	OnConnectionUpdate(handler whatsapp.ConnectionHandler)
	OnCredentialsUpdate(handler whatsapp.CredentialsHandler)

	Connect(ctx context.Context) error
	Disconnect()
	SaveCredentials(ctx context.Context) error
}

// SessionOpener builds a brand-new session
type SessionOpener func(ctx context.Context) (Session, error)

// CodeRenderer shows a pairing code to the operator
type CodeRenderer interface {
	Render(code string)
}

// SenderBinder routes outbound messages to the live session
type SenderBinder interface {
	Bind(sender repo.MessageRepo)
}

// WhatsAppServer supervises the WhatsApp session and feeds messages to the relay
type WhatsAppServer struct {
	open     SessionOpener
	relaySvc *service.RelayService
	sender   SenderBinder
	renderer CodeRenderer
	policy   BackoffPolicy
	log      zerolog.Logger

	// Overridable for tests
	sleep func(ctx context.Context, d time.Duration) error

	// Message deduplication cache
	seenMsgsMu sync.Mutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewWhatsAppServer creates a new WhatsApp server
func NewWhatsAppServer(
	open SessionOpener,
	relaySvc *service.RelayService,
	sender SenderBinder,
	renderer CodeRenderer,
	policy BackoffPolicy,
	log zerolog.Logger,
) *WhatsAppServer {
	return &WhatsAppServer{
		open:     open,
		relaySvc: relaySvc,
		sender:   sender,
		renderer: renderer,
		policy:   policy,
		log:      log.With().Str("component", "server").Logger(),
		sleep:    sleepCtx,
		seenMsgs: make(map[string]time.Time),
	}
}

// Start runs sessions until ctx is cancelled, the account is logged out, or
// the reconnect policy gives up. Every close rebuilds the session from scratch.
func (s *WhatsAppServer) Start(ctx context.Context) error {
	bo := s.policy.NewBackOff(ctx)
	attempt := 0
	for {
		reason, connected, err := s.runSession(ctx)
		if err != nil {
			return err
		}

		closeErr := &domain.SessionClosedError{Reason: reason}
		if reason.LoggedOut {
			s.log.Warn().Str("reason", reason.Detail).Msg("Logged out, pair the device again to continue")
			return closeErr
		}

		if connected {
			bo.Reset()
			attempt = 0
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("giving up after %d reconnect attempts: %w", attempt, closeErr)
		}
		attempt++

		s.log.Warn().
			Str("reason", reason.Detail).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Connection closed, reconnecting")

		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// runSession opens one session and blocks until it closes. It reports the
// close reason and whether the session ever reached Connected.
func (s *WhatsAppServer) runSession(ctx context.Context) (domain.CloseReason, bool, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return domain.CloseReason{}, false, fmt.Errorf("open session: %w", err)
	}

	var (
		lifecycleMu sync.Mutex
		lifecycle   = domain.NewLifecycle()
		closed      = make(chan domain.CloseReason, 1)
		connected   atomic.Bool
	)

	sess.OnConnectionUpdate(func(update domain.ConnectionUpdate) {
		lifecycleMu.Lock()
		action := lifecycle.Apply(update)
		state := lifecycle.State()
		lifecycleMu.Unlock()

		switch action {
		case domain.ActionRenderCode:
			s.renderer.Render(update.Code)
		case domain.ActionReconnect, domain.ActionStop:
			// Only the first close of a session counts
			select {
			case closed <- update.Reason:
			default:
			}
		}

		if update.Kind == domain.UpdateOpen && state == domain.StateConnected {
			connected.Store(true)
			s.log.Info().Msg("WhatsApp bot connected")
		}
	})

	sess.OnCredentialsUpdate(func() {
		if err := sess.SaveCredentials(ctx); err != nil {
			s.log.Error().Err(err).Msg("Failed to save credentials")
		}
	})

	sess.OnMessage(func(msg *domain.Message) {
		s.handleMessage(ctx, msg)
	})

	s.sender.Bind(sess)
	defer s.sender.Bind(nil)

	if err := sess.Connect(ctx); err != nil {
		sess.Disconnect()
		return domain.CloseReason{Detail: fmt.Sprintf("connect: %v", err)}, false, nil
	}

	select {
	case <-ctx.Done():
		sess.Disconnect()
		return domain.CloseReason{}, connected.Load(), ctx.Err()
	case reason := <-closed:
		sess.Disconnect()
		return reason, connected.Load(), nil
	}
}

// handleMessage runs on the session's event goroutine and must return quickly
func (s *WhatsAppServer) handleMessage(ctx context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	if msg.FromMe {
		return
	}

	if msg.ID != "" {
		if s.isMessageSeen(msg.ID) {
			s.log.Debug().Str("msg_id", msg.ID).Msg("Duplicate message ignored")
			return
		}
		s.markMessageSeen(msg.ID)
	}

	s.relaySvc.Enqueue(ctx, &service.MessageRequest{
		ChatID:  msg.ChatID,
		MsgID:   msg.ID,
		Payload: msg.Payload,
	})
}

// isMessageSeen checks if a message has been processed
func (s *WhatsAppServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed and evicts expired entries
func (s *WhatsAppServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()

	now := time.Now()
	s.seenMsgs[msgID] = now

	cutoff := now.Add(-seenTTL)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
