package store

import (
	"context"
	"errors"

	"github.com/kart-io/teamsync/internal/model"
)

// ErrNotFound is returned when a chat or message does not exist, or is not
// owned by the requesting user.
var ErrNotFound = errors.New("store: not found")

// CreateChatParams carries the caller-settable chat fields.
type CreateChatParams struct {
	UserID      string
	WorkspaceID string
	ProjectID   string
	Title       string
	Tags        []string
}

// ConversationStore 定义会话存储接口。
type ConversationStore interface {
	// CreateChat 创建新会话，空标题使用默认标题。
	CreateChat(ctx context.Context, params *CreateChatParams) (*model.Chat, error)

	// ListChats 返回用户的全部会话，按 updated_at 倒序。
	ListChats(ctx context.Context, userID string) ([]*model.Chat, error)

	// GetChat 返回会话及其全部消息（按 created_at, _id 升序）。
	GetChat(ctx context.Context, userID, chatID string) (*model.Chat, error)

	// AppendMessage 追加一条消息并刷新会话的 updated_at。
	// 返回该会话的完整消息列表。
	AppendMessage(ctx context.Context, userID, chatID string, msg *model.Message) ([]*model.Message, error)
}

// Point is a single vector with its payload, addressed by a deterministic
// point id.
type Point struct {
	ID      string
	Vector  []float32
	Payload model.EmbeddingPayload
}

// VectorIndex 定义向量索引接口。
type VectorIndex interface {
	// EnsureCollection 幂等创建集合（含索引与加载）。
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert 写入向量，相同 point id 覆盖旧向量。
	Upsert(ctx context.Context, collection string, point *Point) error

	// Delete 删除向量，点不存在时不报错。
	Delete(ctx context.Context, collection, pointID string) error

	// Search 在集合内检索与 vector 最相似的点，强制按 ownerID 过滤，
	// 结果按分数倒序。
	Search(ctx context.Context, collection string, vector []float32, ownerID string, limit int) ([]*model.SearchHit, error)

	// Stats 返回集合的向量数量。
	Stats(ctx context.Context, collection string) (int64, error)
}
