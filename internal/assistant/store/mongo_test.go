package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kart-io/teamsync/internal/model"
)

// 辅助函数：连接测试用 MongoDB，不可用时跳过
func setupTestMongo(t *testing.T) *MongoStore {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Skip("MongoDB 不可用，跳过测试")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skip("MongoDB 不可用，跳过测试")
	}

	// 每个测试使用独立数据库，结束后清理
	db := client.Database(fmt.Sprintf("teamsync_store_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	store := NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(context.Background()))
	return store
}

func TestMongoStoreChatLifecycle(t *testing.T) {
	store := setupTestMongo(t)
	ctx := context.Background()

	workspaceID := primitive.NewObjectID().Hex()
	chat, err := store.CreateChat(ctx, &CreateChatParams{
		UserID:      "u1",
		WorkspaceID: workspaceID,
		Title:       "Sprint planning",
		Tags:        []string{"planning"},
	})
	require.NoError(t, err)
	assert.False(t, chat.ID.IsZero())
	assert.Equal(t, "Sprint planning", chat.Title)
	require.NotNil(t, chat.WorkspaceID)
	assert.Equal(t, workspaceID, chat.WorkspaceID.Hex())

	// 空标题使用默认标题
	untitled, err := store.CreateChat(ctx, &CreateChatParams{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChatTitle, untitled.Title)

	// 追加消息后该会话排到最前
	_, err = store.AppendMessage(ctx, "u1", chat.ID.Hex(), &model.Message{
		Role:    model.RoleUser,
		Content: "hello",
	})
	require.NoError(t, err)

	chats, err := store.ListChats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, chat.ID, chats[0].ID)

	// 详情包含消息
	got, err := store.GetChat(ctx, "u1", chat.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)

	// 其他用户的列表为空
	others, err := store.ListChats(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestMongoStoreOwnership(t *testing.T) {
	store := setupTestMongo(t)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, &CreateChatParams{UserID: "u1"})
	require.NoError(t, err)

	// 非属主读取和写入都表现为不存在
	_, err = store.GetChat(ctx, "u2", chat.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.AppendMessage(ctx, "u2", chat.ID.Hex(), &model.Message{
		Role:    model.RoleUser,
		Content: "should not land",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// 非法和不存在的会话 id 同样表现为不存在
	_, err = store.GetChat(ctx, "u1", "not-a-hex-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetChat(ctx, "u1", primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	// 属主视角下消息未被写入
	got, err := store.GetChat(ctx, "u1", chat.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestMongoStoreCreateChatInvalidWorkspace(t *testing.T) {
	store := setupTestMongo(t)

	_, err := store.CreateChat(context.Background(), &CreateChatParams{
		UserID:      "u1",
		WorkspaceID: "not-a-hex-id",
	})
	assert.Error(t, err)
}

func TestMongoStoreConcurrentAppends(t *testing.T) {
	store := setupTestMongo(t)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, &CreateChatParams{UserID: "u1"})
	require.NoError(t, err)
	chatID := chat.ID.Hex()

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = store.AppendMessage(ctx, "u1", chatID, &model.Message{
				Role:    model.RoleUser,
				Content: fmt.Sprintf("message-%d", n),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := store.GetChat(ctx, "u1", chatID)
	require.NoError(t, err)
	require.Len(t, got.Messages, writers)

	// 排序稳定：created_at 升序，同一毫秒内按 _id 升序
	seen := map[string]bool{}
	for i, msg := range got.Messages {
		seen[msg.Content] = true
		if i == 0 {
			continue
		}
		prev := got.Messages[i-1]
		require.LessOrEqual(t, prev.CreatedAt, msg.CreatedAt)
		if prev.CreatedAt == msg.CreatedAt {
			assert.True(t, prev.ID.Hex() < msg.ID.Hex(), "expected ascending _id within the same millisecond")
		}
	}
	assert.Len(t, seen, writers)
}
