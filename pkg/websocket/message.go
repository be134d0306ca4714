package websocket

import "time"

// Envelope - конверт для всех сообщений: по type фронтенд решает, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const MessageTypeDataChanged = "data_changed"

// DataChangedPayload - какой документ изменился.
type DataChangedPayload struct {
	Collection string `json:"collection"`
	DocumentID string `json:"documentId"`
	Action     string `json:"action"`
}
