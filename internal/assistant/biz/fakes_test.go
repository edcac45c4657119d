package biz

import (
	"context"
	"sync"

	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/llm"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

type fakeChat struct {
	answer   string
	err      error
	messages []llm.Message
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeChat) Generate(_ context.Context, _, _ string) (*llm.GenerateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.answer}, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

type fakeIndex struct {
	mu        sync.Mutex
	hits      map[string][]*model.SearchHit
	searchErr map[string]error
	upserts   map[string][]*store.Point
	deletes   map[string][]string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		hits:      map[string][]*model.SearchHit{},
		searchErr: map[string]error{},
		upserts:   map[string][]*store.Point{},
		deletes:   map[string][]string{},
	}
}

func (f *fakeIndex) EnsureCollection(_ context.Context, _ string, _ int) error { return nil }

func (f *fakeIndex) Upsert(_ context.Context, collection string, point *store.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[collection] = append(f.upserts[collection], point)
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, collection, pointID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes[collection] = append(f.deletes[collection], pointID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, collection string, _ []float32, _ string, _ int) ([]*model.SearchHit, error) {
	if err := f.searchErr[collection]; err != nil {
		return nil, err
	}
	return f.hits[collection], nil
}

func (f *fakeIndex) Stats(_ context.Context, _ string) (int64, error) { return 0, nil }

type fakeConversations struct {
	chats      map[string]*model.Chat
	messages   map[string][]*model.Message
	appendErr  error
	notFoundID string
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{
		chats:    map[string]*model.Chat{},
		messages: map[string][]*model.Message{},
	}
}

func (f *fakeConversations) CreateChat(_ context.Context, params *store.CreateChatParams) (*model.Chat, error) {
	chat := &model.Chat{UserID: params.UserID, Title: params.Title}
	if chat.Title == "" {
		chat.Title = model.DefaultChatTitle
	}
	return chat, nil
}

func (f *fakeConversations) ListChats(_ context.Context, userID string) ([]*model.Chat, error) {
	var out []*model.Chat
	for _, c := range f.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConversations) GetChat(_ context.Context, userID, chatID string) (*model.Chat, error) {
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, store.ErrNotFound
	}
	return chat, nil
}

func (f *fakeConversations) AppendMessage(_ context.Context, userID, chatID string, msg *model.Message) ([]*model.Message, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	if chatID == f.notFoundID {
		return nil, store.ErrNotFound
	}
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, store.ErrNotFound
	}
	f.messages[chatID] = append(f.messages[chatID], msg)
	return f.messages[chatID], nil
}
