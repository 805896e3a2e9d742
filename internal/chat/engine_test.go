package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vnai-backend/internal/database"
	"vnai-backend/internal/llm"
)

type fakeCall struct {
	model   string
	context []llm.Fragment
}

type fakeClient struct {
	mu    sync.Mutex
	calls []fakeCall
	reply llm.Completion
	err   error
}

func (f *fakeClient) Complete(ctx context.Context, model string, context []llm.Fragment) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{model: model, context: context})
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return f.reply, nil
}

func createDB(t *testing.T, create ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	for _, c := range create {
		require.NoError(t, db.Create(c).Error)
	}

	return db
}

func seedTurns(t *testing.T, db *gorm.DB, userId uuid.UUID, n int) {
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		msg := database.ChatMessage{
			UserId:    userId,
			Message:   fmt.Sprintf("question %d", i),
			Response:  fmt.Sprintf("answer %d", i),
			Model:     llm.DefaultModel,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, database.SaveChatMessage(context.Background(), db, &msg))
	}
}

func TestRespondRejectsEmptyMessage(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{}
	engine := NewEngine(db, client)

	for _, message := range []string{"", "   ", "\t\n "} {
		_, err := engine.Respond(context.Background(), uuid.New(), message, "", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Empty(t, client.calls)

	var count int64
	require.NoError(t, db.Model(&database.ChatMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRespondPersistsTurn(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{reply: llm.Completion{
		Content: "Hi there!",
		Usage:   map[string]any{"TotalTokens": 16},
	}}
	engine := NewEngine(db, client)
	userId := uuid.New()

	reply, err := engine.Respond(context.Background(), userId, "Hello", "llama3-8b-8192", []llm.Fragment{})
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", reply.Response)
	assert.Equal(t, "llama3-8b-8192", reply.Model)
	assert.NotEqual(t, uuid.Nil, reply.MessageID)

	var row database.ChatMessage
	require.NoError(t, db.First(&row, "id = ?", reply.MessageID).Error)
	assert.Equal(t, userId, row.UserId)
	assert.Equal(t, "Hello", row.Message)
	assert.Equal(t, "Hi there!", row.Response)
	assert.Equal(t, "llama3-8b-8192", row.Model)
	assert.NotEmpty(t, row.Usage)
}

func TestRespondDefaultsModel(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{reply: llm.Completion{Content: "ok"}}
	engine := NewEngine(db, client)

	reply, err := engine.Respond(context.Background(), uuid.New(), "Hello", "", []llm.Fragment{})
	require.NoError(t, err)

	assert.Equal(t, llm.DefaultModel, reply.Model)
	require.Len(t, client.calls, 1)
	assert.Equal(t, llm.DefaultModel, client.calls[0].model)
}

func TestRespondTruncatesHistory(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{reply: llm.Completion{Content: "ok"}}
	engine := NewEngine(db, client)

	var history []llm.Fragment
	for i := 0; i < 15; i++ {
		history = append(history,
			llm.Fragment{Role: llm.RoleUser, Content: fmt.Sprintf("question %d", i)},
			llm.Fragment{Role: llm.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}

	_, err := engine.Respond(context.Background(), uuid.New(), "latest", "", history)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	frags := client.calls[0].context
	require.Len(t, frags, 2*MaxContextTurns+2)

	assert.Equal(t, llm.RoleSystem, frags[0].Role)
	assert.Equal(t, SystemPrompt, frags[0].Content)

	// Oldest surviving fragment is turn 5 of 0..14; turns 0-4 are dropped.
	assert.Equal(t, "question 5", frags[1].Content)
	assert.Equal(t, "answer 14", frags[len(frags)-2].Content)

	last := frags[len(frags)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Equal(t, "latest", last.Content)
}

func TestRespondLoadsStoredHistory(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{reply: llm.Completion{Content: "ok"}}
	engine := NewEngine(db, client)
	userId := uuid.New()

	seedTurns(t, db, userId, 12)
	// Another user's turns must never leak into the context.
	seedTurns(t, db, uuid.New(), 3)

	_, err := engine.Respond(context.Background(), userId, "latest", "", nil)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	frags := client.calls[0].context
	require.Len(t, frags, 2*MaxContextTurns+2)

	// Most recent 10 of the 12 stored turns, chronological.
	assert.Equal(t, "question 2", frags[1].Content)
	assert.Equal(t, llm.RoleUser, frags[1].Role)
	assert.Equal(t, "answer 11", frags[len(frags)-2].Content)
	assert.Equal(t, llm.RoleAssistant, frags[len(frags)-2].Role)
	assert.Equal(t, "latest", frags[len(frags)-1].Content)
}

func TestRespondProviderFailure(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{err: fmt.Errorf("completion request failed: status 500")}
	engine := NewEngine(db, client)

	_, err := engine.Respond(context.Background(), uuid.New(), "Hello", "", []llm.Fragment{})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&database.ChatMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRespondSwallowsPersistenceFailure(t *testing.T) {
	db := createDB(t)
	client := &fakeClient{reply: llm.Completion{Content: "Hi there!"}}
	engine := NewEngine(db, client)

	require.NoError(t, db.Migrator().DropTable(&database.ChatMessage{}))

	reply, err := engine.Respond(context.Background(), uuid.New(), "Hello", "", []llm.Fragment{})
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", reply.Response)
	assert.Equal(t, uuid.Nil, reply.MessageID)
}

func TestBuildContextWithoutHistory(t *testing.T) {
	frags := BuildContext(nil, "Hello")

	require.Len(t, frags, 2)
	assert.Equal(t, llm.Fragment{Role: llm.RoleSystem, Content: SystemPrompt}, frags[0])
	assert.Equal(t, llm.Fragment{Role: llm.RoleUser, Content: "Hello"}, frags[1])
}
