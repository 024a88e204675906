package domain

// ConnState is the messaging session state
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateLoggedOut // Terminal, operator must pair again
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// UpdateKind is the kind of connection notification
type UpdateKind int

const (
	UpdateConnecting UpdateKind = iota
	UpdatePairingCode
	UpdateOpen
	UpdateClose
)

// CloseReason explains a close notification
type CloseReason struct {
	LoggedOut  bool
	StatusCode int    // Transport specific, 0 when absent
	Detail     string // Human-readable
}

// ConnectionUpdate is a connection state notification from the session library
type ConnectionUpdate struct {
	Kind   UpdateKind
	Code   string // Pairing code, for UpdatePairingCode
	Reason CloseReason
}

// Action is what the supervisor should do after an update
type Action int

const (
	ActionNone Action = iota
	ActionRenderCode
	ActionReconnect
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionRenderCode:
		return "render_code"
	case ActionReconnect:
		return "reconnect"
	case ActionStop:
		return "stop"
	default:
		return "none"
	}
}

// Lifecycle is the session state machine. It is not safe for concurrent use.
type Lifecycle struct {
	state ConnState
}

// NewLifecycle creates a lifecycle in the Disconnected state
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateDisconnected}
}

// State returns the current state
func (l *Lifecycle) State() ConnState {
	return l.state
}

// Apply advances the state machine and returns the action to take.
// Once LoggedOut, every update is ignored.
func (l *Lifecycle) Apply(u ConnectionUpdate) Action {
	if l.state == StateLoggedOut {
		return ActionNone
	}

	switch u.Kind {
	case UpdateConnecting:
		l.state = StateConnecting
		return ActionNone

	case UpdatePairingCode:
		if u.Code == "" {
			return ActionNone
		}
		l.state = StateConnecting
		return ActionRenderCode

	case UpdateOpen:
		l.state = StateConnected
		return ActionNone

	case UpdateClose:
		if u.Reason.LoggedOut {
			l.state = StateLoggedOut
			return ActionStop
		}
		l.state = StateDisconnected
		return ActionReconnect
	}

	return ActionNone
}
