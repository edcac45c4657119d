// Package model provides data models for the Teamsync assistant service.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultChatTitle is assigned when a chat is created without a title.
const DefaultChatTitle = "New Chat"

// Chat represents a conversation owned by a single user.
// Messages live in their own collection and reference the chat by id.
type Chat struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID      string              `json:"user_id" bson:"user_id"`
	WorkspaceID *primitive.ObjectID `json:"workspace_id,omitempty" bson:"workspace_id,omitempty"`
	ProjectID   *primitive.ObjectID `json:"project_id,omitempty" bson:"project_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Pinned      bool                `json:"pinned" bson:"pinned"`
	Tags        []string            `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt   int64               `json:"created_at" bson:"created_at"` // unix ms
	UpdatedAt   int64               `json:"updated_at" bson:"updated_at"` // unix ms

	// Messages is populated only by GetChat; list endpoints leave it nil.
	Messages []*Message `json:"messages,omitempty" bson:"-"`
}

// ChatList contains a list of chats.
type ChatList struct {
	TotalCount int64   `json:"totalCount"`
	Items      []*Chat `json:"items"`
}
