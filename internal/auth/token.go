package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vnai-backend/internal/database"
)

// TokenVerifier resolves tokens against the api_tokens table. Used for
// self-hosted deployments and tests, where no external auth service exists.
type TokenVerifier struct {
	db *gorm.DB
}

func NewTokenVerifier(db *gorm.DB) *TokenVerifier {
	return &TokenVerifier{db: db}
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (v *TokenVerifier) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrAuthenticationFailed
	}

	var record database.APIToken
	if err := v.db.WithContext(ctx).First(&record, "token_hash = ?", HashToken(token)).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("error looking up api token", "error", err)
		}
		return Identity{}, ErrAuthenticationFailed
	}

	var user database.User
	if err := v.db.WithContext(ctx).First(&user, "id = ?", record.UserId).Error; err != nil {
		slog.Error("api token refers to missing user", "user_id", record.UserId, "error", err)
		return Identity{}, ErrAuthenticationFailed
	}

	return Identity{UserId: user.Id, Email: user.Email}, nil
}

// IssueToken creates a token for the user and returns its clear-text form.
// Only the hash is persisted.
func IssueToken(ctx context.Context, db *gorm.DB, userId uuid.UUID) (string, error) {
	token := uuid.NewString()
	record := database.APIToken{
		TokenHash: HashToken(token),
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return token, nil
}
