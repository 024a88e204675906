package service

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/repo"
)

// DefaultErrorText is sent when generating or sending a reply fails
const DefaultErrorText = "Something went wrong (Error code 02)"

// Replier generates reply text for a prompt
type Replier interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Filter decides whether text should be relayed
type Filter interface {
	ShouldRespond(text string) bool
}

// Result is the outcome of handling one message
type Result int

const (
	ResultIgnored Result = iota
	ResultReplied
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultReplied:
		return "replied"
	case ResultFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// MessageRequest represents a message to relay
type MessageRequest struct {
	ChatID  string
	MsgID   string
	Payload domain.Payload
}

// RelayService forwards keyword-matching messages to the reply generator and
// sends the answer back to the same conversation
type RelayService struct {
	replier     Replier
	filter      Filter
	messageRepo repo.MessageRepo
	errorText   string
	log         zerolog.Logger

	// Per-chat queues
	chatStates map[string]*ChatState
	statesMu   sync.Mutex
	wg         sync.WaitGroup
}

// ChatState holds the pending messages of one conversation
type ChatState struct {
	pending []*MessageRequest
	running bool
}

// NewRelayService creates a new relay service
func NewRelayService(
	replier Replier,
	filter Filter,
	messageRepo repo.MessageRepo,
	errorText string,
	log zerolog.Logger,
) *RelayService {
	if errorText == "" {
		errorText = DefaultErrorText
	}
	return &RelayService{
		replier:     replier,
		filter:      filter,
		messageRepo: messageRepo,
		errorText:   errorText,
		log:         log.With().Str("component", "relay").Logger(),
		chatStates:  make(map[string]*ChatState),
	}
}

// Enqueue schedules req for processing. Messages of the same chat are handled
// one at a time in arrival order; different chats run concurrently.
func (s *RelayService) Enqueue(ctx context.Context, req *MessageRequest) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	state, ok := s.chatStates[req.ChatID]
	if !ok {
		state = &ChatState{}
		s.chatStates[req.ChatID] = state
	}
	state.pending = append(state.pending, req)

	if !state.running {
		state.running = true
		s.wg.Add(1)
		go s.drain(ctx, req.ChatID, state)
	}
}

func (s *RelayService) drain(ctx context.Context, chatID string, state *ChatState) {
	defer s.wg.Done()

	for {
		s.statesMu.Lock()
		if len(state.pending) == 0 {
			state.running = false
			delete(s.chatStates, chatID)
			s.statesMu.Unlock()
			return
		}
		req := state.pending[0]
		state.pending = state.pending[1:]
		s.statesMu.Unlock()

		s.HandleMessage(ctx, req)
	}
}

// Wait blocks until every queued message has been handled
func (s *RelayService) Wait() {
	s.wg.Wait()
}

// HandleMessage processes one message. Failures are answered with the error
// text and never returned.
func (s *RelayService) HandleMessage(ctx context.Context, req *MessageRequest) Result {
	// 1. No payload
	if req == nil || req.Payload == nil {
		return ResultIgnored
	}

	// 2-3. No usable text
	text := domain.ExtractText(req.Payload)
	if strings.TrimSpace(text) == "" {
		return ResultIgnored
	}

	// 4. Trigger keyword
	if !s.filter.ShouldRespond(text) {
		s.log.Debug().Str("chat", req.ChatID).Msg("Ignoring message without trigger keyword")
		return ResultIgnored
	}

	s.log.Info().Str("chat", req.ChatID).Str("text", truncate(text, 80)).Msg("Message received")

	// 5. Relay
	if err := s.relay(ctx, req.ChatID, text); err != nil {
		// 6. Contain the failure
		s.log.Error().Err(err).Str("chat", req.ChatID).Msg("Error processing message")
		if sendErr := s.messageRepo.SendText(ctx, req.ChatID, s.errorText); sendErr != nil {
			s.log.Error().Err(sendErr).Str("chat", req.ChatID).Msg("Failed to send error reply")
		}
		return ResultFailed
	}

	return ResultReplied
}

func (s *RelayService) relay(ctx context.Context, chatID, text string) error {
	if err := s.messageRepo.SendPresence(ctx, chatID, domain.PresenceComposing); err != nil {
		return err
	}

	reply, err := s.replier.Generate(ctx, text)
	if err != nil {
		return err
	}

	if err := s.messageRepo.SendText(ctx, chatID, reply); err != nil {
		return err
	}

	if err := s.messageRepo.SendPresence(ctx, chatID, domain.PresencePaused); err != nil {
		return err
	}

	s.log.Info().Str("chat", chatID).Int("chars", len(reply)).Msg("Reply sent")
	return nil
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
