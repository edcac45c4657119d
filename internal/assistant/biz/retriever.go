package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/llm"
	"github.com/kart-io/teamsync/pkg/utils/errors"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// Collections 每次查询要检索的集合。
	Collections []string
	// TopK 保留的上下文条数。
	TopK int
	// MaxQueryLength 查询长度上限。
	MaxQueryLength int
}

// Retriever 负责把用户问题转成带所有权过滤的上下文检索。
type Retriever struct {
	index    store.VectorIndex
	embedder llm.EmbeddingProvider
	cache    *EmbeddingCache
	config   *RetrieverConfig
}

// NewRetriever 创建检索器实例。
func NewRetriever(
	index store.VectorIndex,
	embedder llm.EmbeddingProvider,
	cache *EmbeddingCache,
	config *RetrieverConfig,
) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		cache:    cache,
		config:   config,
	}
}

// ValidateQuery trims the query and rejects empty or oversized input.
func (r *Retriever) ValidateQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.ErrAssistantEmptyQuery
	}
	if r.config.MaxQueryLength > 0 && len(query) > r.config.MaxQueryLength {
		return "", errors.ErrAssistantQueryTooLong
	}
	return query, nil
}

// Retrieve 检索与 query 最相关的上下文，结果数量不超过 TopK。
// query 必须已通过 ValidateQuery。
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string) ([]*model.SearchHit, error) {
	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var hits []*model.SearchHit
	for _, collection := range r.config.Collections {
		results, err := r.index.Search(ctx, collection, vector, ownerID, r.config.TopK)
		if err != nil {
			// 单个集合检索失败不终止整体检索。
			logger.Warnw("collection search failed", "collection", collection, "error", err.Error())
			continue
		}
		hits = append(hits, results...)
	}

	rankHits(hits)

	if len(hits) > r.config.TopK {
		hits = hits[:r.config.TopK]
	}

	return hits, nil
}

// embedQuery 先查缓存，未命中再调 embedding 供应商并回填。
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if r.cache != nil {
		if vector, err := r.cache.Get(ctx, query); err == nil && len(vector) > 0 {
			return vector, nil
		}
	}

	vector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, query, vector)
	}

	return vector, nil
}

// rankHits 按分数倒序排序，同分按 updated_at 倒序，其余保持稳定。
func rankHits(hits []*model.SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Payload.UpdatedAt > hits[j].Payload.UpdatedAt
	})
}
