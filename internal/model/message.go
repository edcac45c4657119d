package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is an accepted message role.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// Message represents a single turn in a chat.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID    primitive.ObjectID `json:"chat_id" bson:"chat_id"`
	Role      string             `json:"role" bson:"role"`
	Content   string             `json:"content" bson:"content"`
	Sources   []SourceCitation   `json:"sources,omitempty" bson:"sources,omitempty"`
	CreatedAt int64              `json:"created_at" bson:"created_at"` // unix ms
}

// SourceCitation points an assistant answer back at the entity it was
// grounded on.
type SourceCitation struct {
	ID         string  `json:"id" bson:"id"` // domain entity id
	Collection string  `json:"collection,omitempty" bson:"collection,omitempty"`
	Text       string  `json:"text" bson:"text"`
	Score      float32 `json:"score" bson:"score"`
}
