package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RemoteVerifier validates tokens against an external auth service exposing
// a GoTrue-style /auth/v1/user endpoint. A single attempt per call, no
// retries; any failure maps to ErrAuthenticationFailed.
type RemoteVerifier struct {
	client  *resty.Client
	anonKey string
}

func NewRemoteVerifier(baseURL, anonKey string) *RemoteVerifier {
	return &RemoteVerifier{
		client:  resty.New().SetBaseURL(baseURL),
		anonKey: anonKey,
	}
}

type remoteUserResponse struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) Authenticate(ctx context.Context, token string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("apikey", v.anonKey).
		Get("/auth/v1/user")
	if err != nil {
		slog.Error("unable to reach auth service", "error", err)
		return Identity{}, ErrAuthenticationFailed
	}

	if !res.IsSuccess() {
		slog.Error("auth service rejected token", "status_code", res.StatusCode())
		return Identity{}, ErrAuthenticationFailed
	}

	var user remoteUserResponse
	if err := json.Unmarshal(res.Body(), &user); err != nil {
		slog.Error("error parsing response from auth service", "error", err)
		return Identity{}, ErrAuthenticationFailed
	}

	userId, err := uuid.Parse(user.Id)
	if err != nil {
		slog.Error("auth service returned invalid user id", "user_id", user.Id, "error", err)
		return Identity{}, ErrAuthenticationFailed
	}

	return Identity{UserId: userId, Email: user.Email}, nil
}
