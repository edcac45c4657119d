package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/teamsync/internal/model"
	pkgerrors "github.com/kart-io/teamsync/pkg/utils/errors"
)

func newTestOrchestrator(convs *fakeConversations, index *fakeIndex, chat *fakeChat) *Orchestrator {
	retriever := newTestRetriever(index, &fakeEmbedder{vector: []float32{0.1}})
	return NewOrchestrator(NewChatService(convs), retriever, NewGenerator(chat))
}

func TestQueryHappyPath(t *testing.T) {
	convs := newFakeConversations()
	convs.chats["chat-1"] = &model.Chat{UserID: "u1"}

	index := newFakeIndex()
	index.hits["task_embeddings"] = []*model.SearchHit{
		{Score: 0.8, Payload: model.EmbeddingPayload{EntityID: "task-1", Text: "Fix login bug"}},
	}

	o := newTestOrchestrator(convs, index, &fakeChat{answer: "Work on the login bug."})

	result, err := o.Query(context.Background(), "u1", "chat-1", "  what should I do?  ")
	require.NoError(t, err)

	assert.Equal(t, "Work on the login bug.", result.Content)
	assert.Equal(t, model.RoleAssistant, result.Role)
	require.Len(t, result.Sources, 1)

	// both turns persisted, user first
	msgs := convs.messages["chat-1"]
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "what should I do?", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Len(t, msgs[1].Sources, 1)
}

func TestQueryEmptyRejected(t *testing.T) {
	o := newTestOrchestrator(newFakeConversations(), newFakeIndex(), &fakeChat{answer: "x"})

	_, err := o.Query(context.Background(), "u1", "chat-1", "   ")
	assert.ErrorIs(t, err, pkgerrors.ErrAssistantEmptyQuery)
}

func TestQueryChatNotFound(t *testing.T) {
	convs := newFakeConversations() // no chats registered
	o := newTestOrchestrator(convs, newFakeIndex(), &fakeChat{answer: "x"})

	_, err := o.Query(context.Background(), "u1", "missing-chat", "question")
	assert.ErrorIs(t, err, pkgerrors.ErrChatNotFound)
}

func TestQueryNotOwnedChat(t *testing.T) {
	convs := newFakeConversations()
	convs.chats["chat-1"] = &model.Chat{UserID: "someone-else"}

	o := newTestOrchestrator(convs, newFakeIndex(), &fakeChat{answer: "x"})

	_, err := o.Query(context.Background(), "u1", "chat-1", "question")
	assert.ErrorIs(t, err, pkgerrors.ErrChatNotFound)
}

func TestQueryRetrievalFailureDegrades(t *testing.T) {
	convs := newFakeConversations()
	convs.chats["chat-1"] = &model.Chat{UserID: "u1"}

	index := newFakeIndex()
	index.searchErr["project_teams_embeddings"] = errors.New("milvus down")
	index.searchErr["task_embeddings"] = errors.New("milvus down")

	o := newTestOrchestrator(convs, index, &fakeChat{answer: "Answer without context."})

	result, err := o.Query(context.Background(), "u1", "chat-1", "question")
	require.NoError(t, err)
	assert.Equal(t, "Answer without context.", result.Content)
	assert.Empty(t, result.Sources)
}

func TestQueryLLMFailureFallsBack(t *testing.T) {
	convs := newFakeConversations()
	convs.chats["chat-1"] = &model.Chat{UserID: "u1"}

	o := newTestOrchestrator(convs, newFakeIndex(), &fakeChat{err: errors.New("llm down")})

	result, err := o.Query(context.Background(), "u1", "chat-1", "question")
	require.NoError(t, err)
	assert.Equal(t, fallbackAnswer, result.Content)
	assert.Equal(t, fallbackSuggestions, result.SuggestedActions)

	// fallback answer is still persisted as the assistant turn
	msgs := convs.messages["chat-1"]
	require.Len(t, msgs, 2)
	assert.Equal(t, fallbackAnswer, msgs[1].Content)
}
