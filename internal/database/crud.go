package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SQLite only supports one writer at a time, so we need a lock
// whenever we write to the database
var dbMutex sync.Mutex

func SaveChatMessage(ctx context.Context, db *gorm.DB, msg *ChatMessage) error {
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.WithContext(ctx).Create(msg).Error
}

// RecentTurns returns the user's n most recent turns in chronological order.
func RecentTurns(ctx context.Context, db *gorm.DB, userId uuid.UUID, n int) ([]ChatMessage, error) {
	var turns []ChatMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(n).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// History returns up to limit of the user's turns, oldest first.
func History(ctx context.Context, db *gorm.DB, userId uuid.UUID, limit int) ([]ChatMessage, error) {
	var turns []ChatMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at ASC").
		Limit(limit).
		Find(&turns).Error
	return turns, err
}

func CountMessages(ctx context.Context, db *gorm.DB, userId uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&ChatMessage{}).
		Where("user_id = ?", userId).
		Count(&count).Error
	return count, err
}

// ClearHistory bulk-deletes the user's turns. Rows belonging to other users
// are untouched.
func ClearHistory(ctx context.Context, db *gorm.DB, userId uuid.UUID) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.WithContext(ctx).Delete(&ChatMessage{}, "user_id = ?", userId).Error
}

func GetProfile(ctx context.Context, db *gorm.DB, userId uuid.UUID) (Profile, error) {
	var profile Profile
	err := db.WithContext(ctx).First(&profile, "user_id = ?", userId).Error
	return profile, err
}
