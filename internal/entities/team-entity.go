package entities

import (
	"slices"
	"time"
)

type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TechnicianIDs []string  `json:"technicianIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasMember - входит ли техник в команду на момент чтения.
func (t *Team) HasMember(technicianID string) bool {
	return slices.Contains(t.TechnicianIDs, technicianID)
}
