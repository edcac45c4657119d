package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/teamsync/internal/model"
	pkgerrors "github.com/kart-io/teamsync/pkg/utils/errors"
)

func newTestRetriever(index *fakeIndex, embedder *fakeEmbedder) *Retriever {
	return NewRetriever(index, embedder, nil, &RetrieverConfig{
		Collections:    []string{"project_teams_embeddings", "task_embeddings"},
		TopK:           5,
		MaxQueryLength: 100,
	})
}

func hit(entityID string, score float32, updatedAt int64) *model.SearchHit {
	return &model.SearchHit{
		PointID: entityID,
		Score:   score,
		Payload: model.EmbeddingPayload{EntityID: entityID, UpdatedAt: updatedAt},
	}
}

func TestValidateQuery(t *testing.T) {
	r := newTestRetriever(newFakeIndex(), &fakeEmbedder{vector: []float32{0.1}})

	t.Run("trims whitespace", func(t *testing.T) {
		q, err := r.ValidateQuery("  what are my tasks  ")
		require.NoError(t, err)
		assert.Equal(t, "what are my tasks", q)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := r.ValidateQuery("   ")
		assert.ErrorIs(t, err, pkgerrors.ErrAssistantEmptyQuery)
	})

	t.Run("oversized query rejected", func(t *testing.T) {
		long := make([]byte, 101)
		for i := range long {
			long[i] = 'a'
		}
		_, err := r.ValidateQuery(string(long))
		assert.ErrorIs(t, err, pkgerrors.ErrAssistantQueryTooLong)
	})
}

func TestRetrieveMergesAndRanks(t *testing.T) {
	index := newFakeIndex()
	index.hits["project_teams_embeddings"] = []*model.SearchHit{
		hit("ws-1", 0.9, 100),
		hit("ws-2", 0.5, 300),
	}
	index.hits["task_embeddings"] = []*model.SearchHit{
		hit("task-1", 0.7, 200),
		hit("task-2", 0.5, 400),
	}

	r := newTestRetriever(index, &fakeEmbedder{vector: []float32{0.1, 0.2}})

	hits, err := r.Retrieve(context.Background(), "u1", "question")
	require.NoError(t, err)
	require.Len(t, hits, 4)

	// score desc, ties broken by updated_at desc
	assert.Equal(t, "ws-1", hits[0].Payload.EntityID)
	assert.Equal(t, "task-1", hits[1].Payload.EntityID)
	assert.Equal(t, "task-2", hits[2].Payload.EntityID)
	assert.Equal(t, "ws-2", hits[3].Payload.EntityID)
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	index := newFakeIndex()
	for i := 0; i < 8; i++ {
		index.hits["project_teams_embeddings"] = append(
			index.hits["project_teams_embeddings"],
			hit("ws", float32(i), int64(i)),
		)
	}

	r := newTestRetriever(index, &fakeEmbedder{vector: []float32{0.1}})

	hits, err := r.Retrieve(context.Background(), "u1", "question")
	require.NoError(t, err)
	assert.Len(t, hits, 5)
	// best score first
	assert.Equal(t, float32(7), hits[0].Score)
}

func TestRetrieveToleratesCollectionFailure(t *testing.T) {
	index := newFakeIndex()
	index.searchErr["project_teams_embeddings"] = errors.New("collection down")
	index.hits["task_embeddings"] = []*model.SearchHit{hit("task-1", 0.8, 1)}

	r := newTestRetriever(index, &fakeEmbedder{vector: []float32{0.1}})

	hits, err := r.Retrieve(context.Background(), "u1", "question")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "task-1", hits[0].Payload.EntityID)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	r := newTestRetriever(newFakeIndex(), &fakeEmbedder{err: errors.New("provider down")})

	_, err := r.Retrieve(context.Background(), "u1", "question")
	assert.Error(t, err)
}
