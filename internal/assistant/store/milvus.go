package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/pkg/component/milvus"
)

// Payload field names stored alongside each vector.
const (
	fieldOwnerID    = "owner_id"
	fieldEntityType = "entity_type"
	fieldEntityID   = "entity_id"
	fieldText       = "text"
	fieldUpdatedAt  = "updated_at"
)

var payloadFields = []string{fieldOwnerID, fieldEntityType, fieldEntityID, fieldText, fieldUpdatedAt}

// MilvusIndex 实现基于 Milvus 的向量索引。
type MilvusIndex struct {
	client *milvus.Client
}

// NewMilvusIndex 创建向量索引实例。
func NewMilvusIndex(client *milvus.Client) *MilvusIndex {
	return &MilvusIndex{client: client}
}

// EnsureCollection 幂等创建集合。
func (s *MilvusIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	schema := &milvus.CollectionSchema{
		Name:        name,
		Description: "teamsync entity embeddings",
		Dimension:   dimension,
		MetaFields: []milvus.MetaField{
			{Name: fieldOwnerID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldEntityType, DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: fieldEntityID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldText, DataType: entity.FieldTypeVarChar, MaxLen: 4096},
			{Name: fieldUpdatedAt, DataType: entity.FieldTypeInt64},
		},
	}
	return s.client.EnsureCollection(ctx, schema)
}

// Upsert 写入向量，相同 point id 覆盖旧向量。
func (s *MilvusIndex) Upsert(ctx context.Context, collection string, point *Point) error {
	data := &milvus.UpsertData{
		IDs:        []string{point.ID},
		Embeddings: [][]float32{point.Vector},
		Metadata: map[string][]any{
			fieldOwnerID:    {point.Payload.OwnerID},
			fieldEntityType: {point.Payload.EntityType},
			fieldEntityID:   {point.Payload.EntityID},
			fieldText:       {point.Payload.Text},
			fieldUpdatedAt:  {point.Payload.UpdatedAt},
		},
	}

	if err := s.client.Upsert(ctx, collection, data); err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Delete 删除向量，点不存在时不报错。
func (s *MilvusIndex) Delete(ctx context.Context, collection, pointID string) error {
	if err := s.client.DeleteByIDs(ctx, collection, []string{pointID}); err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

// Search 带所有权过滤的相似度检索。
func (s *MilvusIndex) Search(ctx context.Context, collection string, vector []float32, ownerID string, limit int) ([]*model.SearchHit, error) {
	filter := ownerFilter(ownerID)

	results, err := s.client.Search(ctx, collection, vector, limit, filter, payloadFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	hits := make([]*model.SearchHit, 0, len(results))
	for _, r := range results {
		hit := &model.SearchHit{
			PointID:    r.ID,
			Collection: collection,
			Score:      r.Score,
			Payload: model.EmbeddingPayload{
				OwnerID:    metaString(r.Metadata, fieldOwnerID),
				EntityType: metaString(r.Metadata, fieldEntityType),
				EntityID:   metaString(r.Metadata, fieldEntityID),
				Text:       metaString(r.Metadata, fieldText),
				UpdatedAt:  metaInt64(r.Metadata, fieldUpdatedAt),
			},
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Stats 返回集合向量数量。
func (s *MilvusIndex) Stats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// ownerFilter builds the mandatory ownership filter expression.
// Quotes and backslashes are escaped so crafted ids cannot break out of
// the string literal.
func ownerFilter(ownerID string) string {
	escaped := strings.ReplaceAll(ownerID, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`%s == "%s"`, fieldOwnerID, escaped)
}

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metaInt64(m map[string]any, key string) int64 {
	if v, ok := m[key].(int64); ok {
		return v
	}
	return 0
}

var _ VectorIndex = (*MilvusIndex)(nil)
