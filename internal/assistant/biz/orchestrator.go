package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/model"
)

// Orchestrator 串联一次 AI 查询的完整链路。
type Orchestrator struct {
	chats     *ChatService
	retriever *Retriever
	generator *Generator
}

// NewOrchestrator 创建编排器实例。
func NewOrchestrator(chats *ChatService, retriever *Retriever, generator *Generator) *Orchestrator {
	return &Orchestrator{
		chats:     chats,
		retriever: retriever,
		generator: generator,
	}
}

// Query 执行一次带会话记录的 AI 查询：
//  1. 校验并落库用户消息（失败即终止）；
//  2. 检索上下文（失败降级为空上下文）；
//  3. 生成答案（内部兜底，永不失败）；
//  4. 落库助手消息（失败向上抛出）。
func (o *Orchestrator) Query(ctx context.Context, userID, chatID, query string) (*model.QueryResult, error) {
	query, err := o.retriever.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	userMsg := &model.Message{
		Role:    model.RoleUser,
		Content: query,
	}
	if _, err := o.chats.AppendMessage(ctx, userID, chatID, userMsg); err != nil {
		return nil, err
	}

	hits, err := o.retriever.Retrieve(ctx, userID, query)
	if err != nil {
		// 检索失败不终止查询，降级为空上下文。
		logger.Warnw("context retrieval failed, answering without context",
			"chat_id", chatID, "error", err.Error())
		hits = nil
	}

	result := o.generator.Generate(ctx, query, hits)

	assistantMsg := &model.Message{
		Role:    model.RoleAssistant,
		Content: result.Content,
		Sources: result.Sources,
	}
	if _, err := o.chats.AppendMessage(ctx, userID, chatID, assistantMsg); err != nil {
		return nil, err
	}

	return result, nil
}
