package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kart-io/teamsync/internal/model"
)

// Collection names.
const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

// MongoStore 实现基于 MongoDB 的会话存储。
type MongoStore struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

// NewMongoStore 创建会话存储实例。
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		chats:    db.Collection(chatsCollection),
		messages: db.Collection(messagesCollection),
	}
}

// EnsureIndexes creates the supporting indexes. Safe to call on startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}

	_, err = s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}

// CreateChat 创建新会话。
func (s *MongoStore) CreateChat(ctx context.Context, params *CreateChatParams) (*model.Chat, error) {
	now := time.Now().UnixMilli()

	chat := &model.Chat{
		UserID:    params.UserID,
		Title:     params.Title,
		Tags:      params.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if chat.Title == "" {
		chat.Title = model.DefaultChatTitle
	}

	if params.WorkspaceID != "" {
		oid, err := primitive.ObjectIDFromHex(params.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace id: %w", err)
		}
		chat.WorkspaceID = &oid
	}
	if params.ProjectID != "" {
		oid, err := primitive.ObjectIDFromHex(params.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id: %w", err)
		}
		chat.ProjectID = &oid
	}

	res, err := s.chats.InsertOne(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat: %w", err)
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)

	return chat, nil
}

// ListChats 返回用户的全部会话，按 updated_at 倒序。
func (s *MongoStore) ListChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.chats.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []*model.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}

	return chats, nil
}

// GetChat 返回会话及其全部消息。
func (s *MongoStore) GetChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, oid, err := s.findOwnedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.listMessages(ctx, oid)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages

	return chat, nil
}

// AppendMessage 追加消息并刷新会话 updated_at。
func (s *MongoStore) AppendMessage(ctx context.Context, userID, chatID string, msg *model.Message) ([]*model.Message, error) {
	_, oid, err := s.findOwnedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	msg.ChatID = oid
	if msg.CreatedAt == 0 {
		msg.CreatedAt = now
	}

	res, err := s.messages.InsertOne(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)

	_, err = s.chats.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	return s.listMessages(ctx, oid)
}

// findOwnedChat 查找会话，所有权过滤直接折叠进查询条件。
func (s *MongoStore) findOwnedChat(ctx context.Context, userID, chatID string) (*model.Chat, primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, primitive.NilObjectID, ErrNotFound
	}

	var chat model.Chat
	err = s.chats.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, primitive.NilObjectID, ErrNotFound
		}
		return nil, primitive.NilObjectID, fmt.Errorf("failed to find chat: %w", err)
	}

	return &chat, oid, nil
}

func (s *MongoStore) listMessages(ctx context.Context, chatID primitive.ObjectID) ([]*model.Message, error) {
	// _id 作为次级排序键，保证同一毫秒内的消息顺序稳定。
	opts := mongoopts.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := s.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

var _ ConversationStore = (*MongoStore)(nil)
