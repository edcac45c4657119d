package model

// Entity types indexed for retrieval.
const (
	EntityWorkspace = "workspace"
	EntityProject   = "project"
	EntityTask      = "task"
	EntityMember    = "member"
)

// EmbeddingPayload is the metadata stored alongside each vector.
type EmbeddingPayload struct {
	OwnerID    string `json:"owner_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"` // domain id, not the vector point id
	Text       string `json:"text"`
	UpdatedAt  int64  `json:"updated_at"` // unix ms
}

// SearchHit is a single vector search result with its payload.
type SearchHit struct {
	PointID    string  `json:"point_id"`
	Collection string  `json:"collection"`
	Score      float32 `json:"score"`
	Payload    EmbeddingPayload
}

// QueryResult is the orchestrator's answer to an AI query.
type QueryResult struct {
	Content          string           `json:"content"`
	Role             string           `json:"role"`
	Sources          []SourceCitation `json:"sources"`
	SuggestedActions []string         `json:"suggestedActions,omitempty"`
}
