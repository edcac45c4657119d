// Package handler provides HTTP handlers for the assistant service.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/teamsync/internal/assistant/biz"
	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/internal/model"
	"github.com/kart-io/teamsync/internal/pkg/httputils"
	"github.com/kart-io/teamsync/internal/pkg/middleware"
	"github.com/kart-io/teamsync/pkg/utils/errors"
	"github.com/kart-io/teamsync/pkg/utils/response"
)

// Handler handles assistant HTTP requests.
type Handler struct {
	orchestrator *biz.Orchestrator
	chats        *biz.ChatService
	indexer      *biz.Indexer
	index        store.VectorIndex

	collections       []string
	embeddingProvider string
	chatProvider      string
}

// Config wires the handler dependencies.
type Config struct {
	Orchestrator *biz.Orchestrator
	Chats        *biz.ChatService
	Indexer      *biz.Indexer
	Index        store.VectorIndex

	Collections       []string
	EmbeddingProvider string
	ChatProvider      string
}

// New creates a new Handler.
func New(cfg *Config) *Handler {
	return &Handler{
		orchestrator:      cfg.Orchestrator,
		chats:             cfg.Chats,
		indexer:           cfg.Indexer,
		index:             cfg.Index,
		collections:       cfg.Collections,
		embeddingProvider: cfg.EmbeddingProvider,
		chatProvider:      cfg.ChatProvider,
	}
}

// QueryRequest is the AI query request body.
type QueryRequest struct {
	Query  string `json:"query" binding:"required"`
	ChatID string `json:"chat_id" binding:"required"`
}

// Query runs the retrieval-augmented query pipeline.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrAssistantInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	result, err := h.orchestrator.Query(c.Request.Context(), middleware.UserID(c), req.ChatID, req.Query)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}

// CreateChatRequest is the chat creation request body.
type CreateChatRequest struct {
	WorkspaceID string   `json:"workspace_id"`
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
}

// CreateChat creates a new chat for the caller.
func (h *Handler) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrAssistantInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), &store.CreateChatParams{
		UserID:      middleware.UserID(c),
		WorkspaceID: req.WorkspaceID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Tags:        req.Tags,
	})
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, chat)
}

// ListChats lists the caller's chats, newest-updated first.
func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, &model.ChatList{
		TotalCount: int64(len(chats)),
		Items:      chats,
	})
}

// GetChat returns a chat with its ordered messages.
func (h *Handler) GetChat(c *gin.Context) {
	chat, err := h.chats.GetChat(c.Request.Context(), middleware.UserID(c), c.Param("chatID"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, chat)
}

// AppendMessageRequest is the message append request body.
type AppendMessageRequest struct {
	Content string                 `json:"content" binding:"required"`
	Role    string                 `json:"role"`
	Sources []model.SourceCitation `json:"sources"`
}

// AppendMessage appends a message to a chat and returns the full history.
func (h *Handler) AppendMessage(c *gin.Context) {
	var req AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrAssistantInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	messages, err := h.chats.AppendMessage(c.Request.Context(), middleware.UserID(c), c.Param("chatID"), &model.Message{
		Role:    req.Role,
		Content: req.Content,
		Sources: req.Sources,
	})
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, messages)
}

// IndexEntityRequest is the entity indexing request body.
type IndexEntityRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// IndexEntity schedules a fire-and-forget embedding write for a domain
// entity and responds immediately.
func (h *Handler) IndexEntity(c *gin.Context) {
	var req IndexEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrAssistantInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	h.indexer.SafeUpsert(req.EntityType, req.EntityID, req.OwnerID, req.Text)

	c.JSON(http.StatusAccepted, response.SuccessWithMessage("indexing scheduled", gin.H{
		"entity_id": req.EntityID,
		"point_id":  biz.PointID(req.EntityID),
	}))
}

// DeleteEntity schedules removal of an entity's vector.
func (h *Handler) DeleteEntity(c *gin.Context) {
	entityID := c.Param("entityID")
	if entityID == "" {
		httputils.WriteResponse(c, errors.ErrAssistantInvalidRequest.WithMessage("entity id is required"), nil)
		return
	}

	h.indexer.SafeDelete(c.Query("entity_type"), entityID)

	c.JSON(http.StatusAccepted, response.SuccessWithMessage("deletion scheduled", gin.H{
		"entity_id": entityID,
	}))
}

// CollectionStats describes one vector collection.
type CollectionStats struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatsResponse is the /stats payload.
type StatsResponse struct {
	Collections       []CollectionStats `json:"collections"`
	EmbeddingProvider string            `json:"embedding_provider"`
	ChatProvider      string            `json:"chat_provider"`
}

// Stats reports collection sizes and configured providers.
func (h *Handler) Stats(c *gin.Context) {
	stats := &StatsResponse{
		Collections:       make([]CollectionStats, 0, len(h.collections)),
		EmbeddingProvider: h.embeddingProvider,
		ChatProvider:      h.chatProvider,
	}

	for _, collection := range h.collections {
		count, err := h.index.Stats(c.Request.Context(), collection)
		if err != nil {
			logger.Warnw("failed to get collection stats", "collection", collection, "error", err.Error())
			count = -1
		}
		stats.Collections = append(stats.Collections, CollectionStats{
			Name:  collection,
			Count: count,
		})
	}

	httputils.WriteResponse(c, nil, stats)
}
