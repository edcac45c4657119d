package biz

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/utils/errors"
)

// ChatService 提供会话的业务操作，负责把存储层错误映射为错误码。
type ChatService struct {
	store store.ConversationStore
}

// NewChatService 创建会话服务实例。
func NewChatService(conversations store.ConversationStore) *ChatService {
	return &ChatService{store: conversations}
}

// CreateChat 创建新会话。
func (s *ChatService) CreateChat(ctx context.Context, params *store.CreateChatParams) (*model.Chat, error) {
	if params.UserID == "" {
		return nil, errors.ErrUnauthorized
	}

	chat, err := s.store.CreateChat(ctx, params)
	if err != nil {
		logger.Errorw("failed to create chat", "user_id", params.UserID, "error", err.Error())
		return nil, errors.ErrDatabase
	}
	return chat, nil
}

// ListChats 返回用户的会话列表。
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	chats, err := s.store.ListChats(ctx, userID)
	if err != nil {
		logger.Errorw("failed to list chats", "user_id", userID, "error", err.Error())
		return nil, errors.ErrDatabase
	}
	return chats, nil
}

// GetChat 返回会话及其消息。
func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := s.store.GetChat(ctx, userID, chatID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrChatNotFound
		}
		logger.Errorw("failed to get chat", "chat_id", chatID, "error", err.Error())
		return nil, errors.ErrDatabase
	}
	return chat, nil
}

// AppendMessage 校验并追加消息，返回会话的完整消息列表。
func (s *ChatService) AppendMessage(ctx context.Context, userID, chatID string, msg *model.Message) ([]*model.Message, error) {
	msg.Content = strings.TrimSpace(msg.Content)
	if msg.Content == "" {
		return nil, errors.ErrAssistantInvalidRequest.WithMessage("message content is required")
	}
	if msg.Role == "" {
		msg.Role = model.RoleUser
	}
	if !model.ValidRole(msg.Role) {
		return nil, errors.ErrAssistantInvalidRequest.WithMessage("invalid message role")
	}

	messages, err := s.store.AppendMessage(ctx, userID, chatID, msg)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrChatNotFound
		}
		logger.Errorw("failed to append message", "chat_id", chatID, "error", err.Error())
		return nil, errors.ErrDatabase
	}
	return messages, nil
}
