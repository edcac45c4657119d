package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/id"
	"github.com/kart-io/teamsync/pkg/infra/pool"
	"github.com/kart-io/teamsync/pkg/llm"
)

// pointNamespace is the UUIDv5 namespace for deterministic point ids.
// The same domain entity always maps to the same point, so re-indexing
// replaces instead of duplicating.
var pointNamespace = id.MustNamespace("5c0b59b2-dc3e-4d1f-9e71-1234567890ab")

// PointID derives the deterministic vector point id for a domain entity.
func PointID(entityID string) string {
	return id.NewV5(pointNamespace, entityID)
}

// IndexerConfig 索引器配置。
type IndexerConfig struct {
	// DefaultCollection 未知实体类型的兜底集合。
	DefaultCollection string
	// CollectionByType 实体类型到集合的映射。
	CollectionByType map[string]string
	// Collections 全部集合（按类型删除时未知类型会逐个尝试）。
	Collections []string
	// MaxTextLength 写入 payload 前的文本截断长度。
	MaxTextLength int
	// Timeout 单次后台索引操作的超时时间。
	Timeout time.Duration
}

// DefaultCollectionByType 默认的实体类型到集合映射。
func DefaultCollectionByType() map[string]string {
	return map[string]string{
		model.EntityWorkspace: "project_teams_embeddings",
		model.EntityMember:    "project_teams_embeddings",
		model.EntityProject:   "project_embeddings",
		model.EntityTask:      "task_embeddings",
	}
}

// Indexer 负责把领域实体异步写入向量索引。
// 所有写入都是 fire-and-forget：错误只记日志，不影响实体写路径。
type Indexer struct {
	index    store.VectorIndex
	embedder llm.EmbeddingProvider
	config   *IndexerConfig
}

// NewIndexer 创建索引器实例。
func NewIndexer(index store.VectorIndex, embedder llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.CollectionByType == nil {
		config.CollectionByType = DefaultCollectionByType()
	}
	return &Indexer{
		index:    index,
		embedder: embedder,
		config:   config,
	}
}

// CollectionFor 返回实体类型对应的集合。
func (i *Indexer) CollectionFor(entityType string) string {
	if c, ok := i.config.CollectionByType[entityType]; ok {
		return c
	}
	return i.config.DefaultCollection
}

// SafeUpsert 异步生成 embedding 并写入索引。
func (i *Indexer) SafeUpsert(entityType, entityID, ownerID, text string) {
	i.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), i.config.Timeout)
		defer cancel()

		if err := i.upsert(ctx, entityType, entityID, ownerID, text); err != nil {
			logger.Errorw("entity indexing failed",
				"entity_type", entityType, "entity_id", entityID, "error", err.Error())
		}
	})
}

// SafeDelete 异步删除实体向量。entityType 为空时尝试所有集合。
func (i *Indexer) SafeDelete(entityType, entityID string) {
	i.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), i.config.Timeout)
		defer cancel()

		pointID := PointID(entityID)

		collections := i.config.Collections
		if entityType != "" {
			collections = []string{i.CollectionFor(entityType)}
		}

		for _, collection := range collections {
			if err := i.index.Delete(ctx, collection, pointID); err != nil {
				logger.Errorw("entity deletion failed",
					"collection", collection, "entity_id", entityID, "error", err.Error())
			}
		}
	})
}

func (i *Indexer) upsert(ctx context.Context, entityType, entityID, ownerID, text string) error {
	truncated := truncate(text, i.config.MaxTextLength)

	vector, err := i.embedder.EmbedSingle(ctx, truncated)
	if err != nil {
		return err
	}

	point := &store.Point{
		ID:     PointID(entityID),
		Vector: vector,
		Payload: model.EmbeddingPayload{
			OwnerID:    ownerID,
			EntityType: entityType,
			EntityID:   entityID,
			Text:       truncated,
			UpdatedAt:  time.Now().UnixMilli(),
		},
	}

	return i.index.Upsert(ctx, i.CollectionFor(entityType), point)
}

// submit 优先提交到后台协程池，池不可用时退化为普通 goroutine。
func (i *Indexer) submit(task func()) {
	bgPool, err := pool.GetByType(pool.BackgroundPool)
	if err == nil && bgPool != nil {
		if submitErr := bgPool.Submit(task); submitErr == nil {
			return
		}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("background index task panicked", "panic", r)
			}
		}()
		task()
	}()
}

// truncate 按字符数截断，避免截断在多字节字符中间。
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
