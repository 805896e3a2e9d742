package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	Profile *Profile `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

type Profile struct {
	UserId      uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName string
	AvatarURL   string
}

// APIToken maps the sha256 digest of a bearer token to its owner. Clear-text
// tokens are never stored.
type APIToken struct {
	TokenHash string    `gorm:"size:64;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time
}

// ChatMessage is one turn: a user message paired with the generated response.
// Rows are immutable once written; they are only inserted, or bulk-deleted
// per user by the clear-history action.
type ChatMessage struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId   uuid.UUID `gorm:"type:uuid;index;not null"`
	Message  string    `gorm:"not null"`
	Response string    `gorm:"not null"`
	Model    string    `gorm:"size:64;not null"`

	// Provider token accounting, e.g. {"PromptTokens": 12, ...}
	Usage datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"index"`
}
