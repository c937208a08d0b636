package ws

import (
	"encoding/json"
	"time"

	"github.com/devjasani79/WhatsUpDev/pkg/logger"
)

// Event names, wire-compatible with the web client.
const (
	EventJoinChat        = "join chat"
	EventLeaveChat       = "leave chat"
	EventNewMessage      = "new message"
	EventMessageReceived = "message received"
	EventTyping          = "typing"
	EventStopTyping      = "stop typing"
	EventReadMessages    = "read messages"
	EventMessagesRead    = "messages read"
	EventMessageUnsend   = "message unsend"
	EventMessageUnsent   = "message unsent"
	EventUserOnline      = "user online"
	EventUserOffline     = "user offline"
)

// Event is the JSON envelope every frame carries in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type ReadPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type UnsendPayload struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
}

type UnsentPayload struct {
	MessageID string `json:"messageId"`
}

type PresencePayload struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// Envelope marshals an outbound event frame. A payload that cannot be
// marshaled is a programming error; it is logged and dropped.
func Envelope(event string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event payload")
		return nil
	}
	frame, err := json.Marshal(Event{Event: event, Data: raw})
	if err != nil {
		logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event frame")
		return nil
	}
	return frame
}

// Relay re-wraps an inbound payload under a new event name without
// touching the payload bytes.
func Relay(event string, data json.RawMessage) []byte {
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logger.Error().Err(err).Str("event", event).Msg("Failed to marshal relay frame")
		return nil
	}
	return frame
}
