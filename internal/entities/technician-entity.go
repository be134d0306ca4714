package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Technician struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	AvatarURL   null.String `json:"avatarUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
