// Package events defines the messages pushed to websocket clients.
package events

import (
	"time"

	"providerpulse/pkg/contracts/domain"
)

// MessageType names a websocket message
type MessageType string

const (
	MessageTypeConnect         MessageType = "connect"
	MessageTypeDatasetLoaded   MessageType = "dataset:loaded"
	MessageTypeDatasetRefresh  MessageType = "dataset:refreshed"
	MessageTypeDatasetDeleted  MessageType = "dataset:deleted"
	MessageTypeDatasetRejected MessageType = "dataset:rejected"
)

// BaseMessage is embedded by every websocket message
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is the envelope written to clients
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMessage stamps data with type and the current time
func NewMessage(t MessageType, data interface{}, traceID string) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      t,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}

// ConnectData greets a newly registered client
type ConnectData struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// DatasetEvent reports a change to the dataset store
type DatasetEvent struct {
	Dataset domain.DatasetInfo `json:"dataset"`
	// Replaced is set when a refresh swapped out an earlier dataset
	Replaced string `json:"replaced,omitempty"`
}

// DatasetRejectedEvent reports a workbook that could not be ingested
type DatasetRejectedEvent struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
