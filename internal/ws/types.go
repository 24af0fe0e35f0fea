package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
)

// control is the envelope of non-event frames.
type control struct {
	Type string `json:"type"`
}
