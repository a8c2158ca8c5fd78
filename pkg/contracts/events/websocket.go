// Package events contains the WebSocket message contracts shared with the
// browser front end.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConnection is sent once to a client after it registers.
	MessageTypeConnection MessageType = "connection"

	// MessageTypePicksUpdated is broadcast after a refresh wrote a new snapshot.
	MessageTypePicksUpdated MessageType = "picks.updated"

	// MessageTypeHeartbeat is sent by browsers to keep the socket alive.
	MessageTypeHeartbeat MessageType = "heartbeat"
)

// Message is the envelope of every server-sent WebSocket message.
type Message struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ConnectionData is the payload of a connection message.
type ConnectionData struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// PicksUpdated is the payload of a picks.updated message.
type PicksUpdated struct {
	RunID       string `json:"run_id"`
	UpdateTime  string `json:"updateTime"`
	Date        string `json:"date"`
	TotalStocks int    `json:"totalStocks"`
}
