package events

import "time"

const DataChangedEventName = "data.changed"

// Действия над документами.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// DataChanged - в коллекции изменился документ. Браузер по нему перечитывает свои списки.
type DataChanged struct {
	Collection string    `json:"collection"`
	DocumentID string    `json:"documentId"`
	Action     string    `json:"action"`
	Origin     string    `json:"origin"`
	At         time.Time `json:"at"`
}

func (e DataChanged) Name() string {
	return DataChangedEventName
}
