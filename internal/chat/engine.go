// Package chat orchestrates one chat exchange: it assembles a bounded
// conversation context, calls the completion provider and records the
// resulting turn.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vnai-backend/internal/database"
	"vnai-backend/internal/llm"
)

// SystemPrompt is prepended to every conversation context.
const SystemPrompt = "You are VN-AI, an advanced and helpful AI assistant. You are knowledgeable, friendly, and provide accurate information. Always be concise but thorough in your responses."

// MaxContextTurns bounds how many prior turns are included when prompting
// the model. Older turns are dropped; no token-length accounting is done
// beyond this truncation.
const MaxContextTurns = 10

var ErrEmptyMessage = errors.New("message is required")

// Reply is the outcome of one successful exchange. MessageID is uuid.Nil
// when the turn could not be persisted.
type Reply struct {
	Response  string
	MessageID uuid.UUID
	Model     string
}

type Engine struct {
	db     *gorm.DB
	client llm.Client
}

func NewEngine(db *gorm.DB, client llm.Client) *Engine {
	return &Engine{db: db, client: client}
}

// Respond handles one chat submission for an authenticated user.
//
// history carries the caller-supplied conversation fragments; truncation to
// the context window happens here, so callers may send everything they have.
// A nil history means the caller sent none, in which case the user's recent
// turns are loaded from the store instead.
//
// A persistence failure is logged and swallowed: the caller still receives
// the generated response, with a nil message id. Losing a row is preferable
// to losing an answer the provider already produced.
func (e *Engine) Respond(ctx context.Context, userId uuid.UUID, message, model string, history []llm.Fragment) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	if model == "" {
		model = llm.DefaultModel
	}

	if history == nil {
		stored, err := database.RecentTurns(ctx, e.db, userId, MaxContextTurns)
		if err != nil {
			slog.Error("error loading recent turns", "user_id", userId, "error", err)
		}
		history = make([]llm.Fragment, 0, 2*len(stored))
		for _, turn := range stored {
			history = append(history,
				llm.Fragment{Role: llm.RoleUser, Content: turn.Message},
				llm.Fragment{Role: llm.RoleAssistant, Content: turn.Response},
			)
		}
	}

	completion, err := e.client.Complete(ctx, model, BuildContext(history, message))
	if err != nil {
		return Reply{}, err
	}

	record := database.ChatMessage{
		UserId:   userId,
		Message:  message,
		Response: completion.Content,
		Model:    model,
	}
	if completion.Usage != nil {
		if usage, err := json.Marshal(completion.Usage); err == nil {
			record.Usage = datatypes.JSON(usage)
		}
	}

	if err := database.SaveChatMessage(ctx, e.db, &record); err != nil {
		slog.Error("error saving chat message", "user_id", userId, "error", err)
		return Reply{Response: completion.Content, Model: model}, nil
	}

	return Reply{Response: completion.Content, MessageID: record.Id, Model: model}, nil
}

// BuildContext assembles the provider context: the system instruction, the
// most recent MaxContextTurns turns of history in chronological order, then
// the new user message as the final fragment.
func BuildContext(history []llm.Fragment, message string) []llm.Fragment {
	if max := 2 * MaxContextTurns; len(history) > max {
		history = history[len(history)-max:]
	}

	fragments := make([]llm.Fragment, 0, len(history)+2)
	fragments = append(fragments, llm.Fragment{Role: llm.RoleSystem, Content: SystemPrompt})
	fragments = append(fragments, history...)
	return append(fragments, llm.Fragment{Role: llm.RoleUser, Content: message})
}
