package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/llm"
)

// systemPromptTemplate grounds the model on retrieved context only.
const systemPromptTemplate = `You are a helpful project management assistant. Use the following context to answer the user's question.
If you don't know the answer, say so.

Context:
%s`

// fallbackAnswer is returned whenever the LLM call fails.
const fallbackAnswer = "I'm having trouble accessing that information right now. Please try again later or be more specific with your request."

// fallbackSuggestions accompany the fallback answer.
var fallbackSuggestions = []string{
	"Try rephrasing your question",
	"Specify a time frame (e.g., 'this week')",
	"Mention specific projects or team members",
}

// Generator 负责把检索上下文和用户问题组装成 grounded prompt 并生成答案。
type Generator struct {
	chat llm.ChatProvider
}

// NewGenerator 创建生成器实例。
func NewGenerator(chat llm.ChatProvider) *Generator {
	return &Generator{chat: chat}
}

// Generate 生成答案。LLM 失败时返回静态兜底答案，永不返回错误。
func (g *Generator) Generate(ctx context.Context, query string, hits []*model.SearchHit) *model.QueryResult {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(systemPromptTemplate, buildContext(hits))},
		{Role: llm.RoleUser, Content: query},
	}

	answer, err := g.chat.Chat(ctx, messages)
	if err != nil {
		logger.Errorw("answer generation failed, using fallback",
			"error", err.Error(), "provider", g.chat.Name(), "hits", len(hits))
		return &model.QueryResult{
			Content:          fallbackAnswer,
			Role:             model.RoleAssistant,
			Sources:          []model.SourceCitation{},
			SuggestedActions: fallbackSuggestions,
		}
	}

	return &model.QueryResult{
		Content: answer,
		Role:    model.RoleAssistant,
		Sources: citations(hits),
	}
}

// buildContext 把检索结果拼成上下文块，每条标注来源实体与分数。
func buildContext(hits []*model.SearchHit) string {
	if len(hits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("From %s (%.2f): %s",
			hit.Payload.EntityID, hit.Score, hit.Payload.Text))
	}
	return strings.Join(parts, "\n\n")
}

func citations(hits []*model.SearchHit) []model.SourceCitation {
	sources := make([]model.SourceCitation, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, model.SourceCitation{
			ID:         hit.Payload.EntityID,
			Collection: hit.Collection,
			Text:       hit.Payload.Text,
			Score:      hit.Score,
		})
	}
	return sources
}
