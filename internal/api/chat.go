package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vnai-backend/internal/auth"
	"vnai-backend/internal/chat"
	"vnai-backend/internal/database"
	"vnai-backend/internal/llm"
	"vnai-backend/pkg/api"
)

const defaultHistoryLimit = 50

// Models advertised to the UI. Informational only: whatever model id a chat
// request carries is forwarded to the provider as-is.
var groqModels = []api.ModelInfo{
	{Value: "llama3-8b-8192", Label: "Llama 3 8B"},
	{Value: "llama3-70b-8192", Label: "Llama 3 70B"},
	{Value: "mixtral-8x7b-32768", Label: "Mixtral 8x7B"},
	{Value: "gemma-7b-it", Label: "Gemma 7B"},
}

type ChatService struct {
	db       *gorm.DB
	verifier auth.Verifier
	engine   *chat.Engine
}

func NewChatService(db *gorm.DB, verifier auth.Verifier, client llm.Client) *ChatService {
	return &ChatService{
		db:       db,
		verifier: verifier,
		engine:   chat.NewEngine(db, client),
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", RestHandler(s.SendMessage))
		r.Get("/history", RestHandler(s.GetHistory))
		r.Delete("/history", RestHandler(s.ClearHistory))
		r.Get("/count", RestHandler(s.GetCount))
		r.Get("/models", RestHandler(s.GetModels))
	})
	r.Get("/profile", RestHandler(s.GetProfile))
}

func (s *ChatService) authenticate(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Identity{}, auth.ErrNoAuthHeader
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return s.verifier.Authenticate(r.Context(), token)
}

func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	identity, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return nil, err
	}

	var history []llm.Fragment
	if req.ConversationHistory != nil {
		history = make([]llm.Fragment, 0, len(req.ConversationHistory))
		for _, m := range req.ConversationHistory {
			history = append(history, llm.Fragment{Role: m.Role, Content: m.Content})
		}
	}

	// A caller that stops waiting must not abort the in-flight completion or
	// the write that follows it.
	ctx := context.WithoutCancel(r.Context())

	reply, err := s.engine.Respond(ctx, identity.UserId, req.Message, req.Model, history)
	if err != nil {
		return nil, err
	}

	resp := api.ChatResponse{Response: reply.Response}
	if reply.MessageID != uuid.Nil {
		resp.MessageID = reply.MessageID.String()
	}
	return resp, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	identity, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}

	params, err := ParseRequestQueryParams[api.HistoryQuery](r)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	turns, err := database.History(r.Context(), s.db, identity.UserId, limit)
	if err != nil {
		return nil, err
	}

	items := make([]api.HistoryItem, 0, len(turns))
	for _, turn := range turns {
		items = append(items, api.HistoryItem{
			ID:        turn.Id,
			Message:   turn.Message,
			Response:  turn.Response,
			Model:     turn.Model,
			CreatedAt: turn.CreatedAt,
		})
	}
	return items, nil
}

func (s *ChatService) ClearHistory(r *http.Request) (any, error) {
	identity, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}

	return nil, database.ClearHistory(r.Context(), s.db, identity.UserId)
}

func (s *ChatService) GetCount(r *http.Request) (any, error) {
	identity, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}

	count, err := database.CountMessages(r.Context(), s.db, identity.UserId)
	if err != nil {
		return nil, err
	}
	return api.CountResponse{Count: count}, nil
}

func (s *ChatService) GetModels(r *http.Request) (any, error) {
	return groqModels, nil
}

func (s *ChatService) GetProfile(r *http.Request) (any, error) {
	identity, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}

	resp := api.ProfileResponse{UserID: identity.UserId, Email: identity.Email}

	profile, err := database.GetProfile(r.Context(), s.db, identity.UserId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	resp.DisplayName = profile.DisplayName
	resp.AvatarURL = profile.AvatarURL

	return resp, nil
}
