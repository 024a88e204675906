// Package whatsapp wraps whatsmeow: it owns the credential store, turns
// library events into bridge types and sends text and presence updates.
package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/logger"

	_ "modernc.org/sqlite"
)

// storeFile is the credential database inside the auth directory
const storeFile = "session.db"

// MessageHandler is the callback for received messages
type MessageHandler func(msg *domain.Message)

// ConnectionHandler is the callback for connection state changes
type ConnectionHandler func(update domain.ConnectionUpdate)

// CredentialsHandler is called when the library has new credentials to save
type CredentialsHandler func()

// Store is the persisted credential store shared by every session
type Store struct {
	container *sqlstore.Container
	log       zerolog.Logger
}

// OpenStore opens (creating if needed) the credential store under authDir
func OpenStore(ctx context.Context, authDir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(authDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create auth directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.Join(authDir, storeFile))
	container, err := sqlstore.New(ctx, "sqlite", dsn, logger.WhatsApp(log, "store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	return &Store{container: container, log: log}, nil
}

// Close closes the credential store
func (s *Store) Close() error {
	return s.container.Close()
}

// NewClient builds a fresh session from the stored device. Each call returns a
// new client with no handlers registered.
func (s *Store) NewClient(ctx context.Context) (*Client, error) {
	device, err := s.container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	cli := whatsmeow.NewClient(device, logger.WhatsApp(s.log, "client"))
	// Reconnects are driven by the bridge's supervisor
	cli.EnableAutoReconnect = false

	c := &Client{
		cli: cli,
		log: s.log.With().Str("component", "whatsapp").Logger(),
	}
	cli.AddEventHandler(c.handleEvent)
	return c, nil
}

// Client is a single WhatsApp session
type Client struct {
	cli *whatsmeow.Client
	log zerolog.Logger

	mu            sync.RWMutex
	onMessage     MessageHandler
	onConnection  ConnectionHandler
	onCredentials CredentialsHandler
	cancelQR      context.CancelFunc
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = handler
}

// OnConnectionUpdate sets the connection state handler
func (c *Client) OnConnectionUpdate(handler ConnectionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnection = handler
}

// OnCredentialsUpdate sets the credential update handler
func (c *Client) OnCredentialsUpdate(handler CredentialsHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCredentials = handler
}

// Connect opens the websocket. When the device has never been paired, pairing
// codes are delivered as UpdatePairingCode notifications.
func (c *Client) Connect(ctx context.Context) error {
	c.emitConnection(domain.ConnectionUpdate{Kind: domain.UpdateConnecting})

	if c.cli.Store.ID != nil {
		return c.cli.Connect()
	}

	qrCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelQR = cancel
	c.mu.Unlock()

	qrChan, err := c.cli.GetQRChannel(qrCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get QR channel: %w", err)
	}

	if err := c.cli.Connect(); err != nil {
		cancel()
		return err
	}

	go c.watchQR(qrChan)
	return nil
}

func (c *Client) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			c.emitConnection(domain.ConnectionUpdate{Kind: domain.UpdatePairingCode, Code: item.Code})
		case whatsmeow.QRChannelSuccess.Event:
			c.log.Info().Msg("Pairing completed")
		case whatsmeow.QRChannelTimeout.Event:
			c.emitConnection(domain.ConnectionUpdate{
				Kind:   domain.UpdateClose,
				Reason: domain.CloseReason{Detail: "pairing timed out"},
			})
		case whatsmeow.QRChannelEventError:
			c.emitConnection(domain.ConnectionUpdate{
				Kind:   domain.UpdateClose,
				Reason: domain.CloseReason{Detail: fmt.Sprintf("pairing failed: %v", item.Error)},
			})
		default:
			c.log.Debug().Str("event", item.Event).Msg("Pairing event")
		}
	}
}

// Disconnect closes the websocket
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancelQR != nil {
		c.cancelQR()
		c.cancelQR = nil
	}
	c.mu.Unlock()
	c.cli.Disconnect()
}

// SaveCredentials persists the device credentials through the store
func (c *Client) SaveCredentials(ctx context.Context) error {
	if err := c.cli.Store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// SendText sends a text message to chatID
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	_, err = c.cli.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}

	c.log.Debug().Str("chat", chatID).Msg("Message sent")
	return nil
}

// SendPresence shows a typing indicator in chatID
func (c *Client) SendPresence(ctx context.Context, chatID string, presence domain.Presence) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	state := types.ChatPresencePaused
	if presence == domain.PresenceComposing {
		state = types.ChatPresenceComposing
	}
	if err := c.cli.SendChatPresence(ctx, jid, state, types.ChatPresenceMediaText); err != nil {
		return fmt.Errorf("send presence failed: %w", err)
	}
	return nil
}

// handleEvent runs on the library's event goroutine
func (c *Client) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		if msg := convertMessage(evt); msg != nil {
			c.mu.RLock()
			handler := c.onMessage
			c.mu.RUnlock()
			if handler != nil {
				handler(msg)
			}
		}

	case *events.Connected:
		c.emitConnection(domain.ConnectionUpdate{Kind: domain.UpdateOpen})

	case *events.PairSuccess:
		c.log.Info().Str("jid", evt.ID.String()).Msg("Paired new device")
		c.emitCredentials()

	case *events.KeepAliveTimeout:
		c.log.Warn().Int("failures", evt.ErrorCount).Msg("Keepalive timed out")
		c.emitClose(evt)

	default:
		c.emitClose(rawEvt)
	}
}

// emitClose reports evt as a close when it ends the connection
func (c *Client) emitClose(evt any) {
	if reason, ok := closeReasonFor(evt); ok {
		c.emitConnection(domain.ConnectionUpdate{Kind: domain.UpdateClose, Reason: reason})
	}
}

func (c *Client) emitConnection(update domain.ConnectionUpdate) {
	c.mu.RLock()
	handler := c.onConnection
	c.mu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (c *Client) emitCredentials() {
	c.mu.RLock()
	handler := c.onCredentials
	c.mu.RUnlock()
	if handler != nil {
		handler()
	}
}
