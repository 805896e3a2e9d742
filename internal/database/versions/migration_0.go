package versions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Snapshots of the models as of migration 0. Later migrations must not reuse
// these types; they get their own copies so that old migrations keep working
// when the live schema moves on.

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

type Profile struct {
	UserId      uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName string
	AvatarURL   string
}

type APIToken struct {
	TokenHash string    `gorm:"size:64;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time
}

type ChatMessage struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID      `gorm:"type:uuid;index;not null"`
	Message   string         `gorm:"not null"`
	Response  string         `gorm:"not null"`
	Model     string         `gorm:"size:64;not null"`
	Usage     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"index"`
}

func Migration0(txn *gorm.DB) error {
	return txn.AutoMigrate(&User{}, &Profile{}, &APIToken{}, &ChatMessage{})
}
