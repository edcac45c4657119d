// Package router registers the assistant HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/teamsync/internal/assistant/handler"
	"github.com/kart-io/teamsync/internal/pkg/middleware"
	"github.com/kart-io/teamsync/pkg/component/storage"
	jwtopts "github.com/kart-io/teamsync/pkg/options/jwt"
)

// Config holds the router dependencies.
type Config struct {
	Handler *handler.Handler
	Storage *storage.Manager
	JWT     *jwtopts.Options
}

// Register mounts all routes on the engine.
func Register(engine *gin.Engine, cfg *Config) {
	engine.Use(middleware.RequestID(), gin.Recovery())

	// 健康检查不需要鉴权
	engine.GET("/healthz", healthz(cfg.Storage))

	v1 := engine.Group("/v1", middleware.Auth(cfg.JWT))
	{
		ai := v1.Group("/ai")
		{
			ai.POST("/query", cfg.Handler.Query)
		}

		chats := v1.Group("/chats")
		{
			chats.POST("", cfg.Handler.CreateChat)
			chats.GET("", cfg.Handler.ListChats)
			chats.GET("/:chatID", cfg.Handler.GetChat)
			chats.POST("/:chatID/messages", cfg.Handler.AppendMessage)
		}

		index := v1.Group("/index")
		{
			index.POST("/entities", cfg.Handler.IndexEntity)
			index.DELETE("/entities/:entityID", cfg.Handler.DeleteEntity)
		}

		v1.GET("/stats", cfg.Handler.Stats)
	}
}

// healthz reports the health of all registered storage backends.
func healthz(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := manager.HealthCheckAll(c.Request.Context())

		healthy := true
		backends := make(map[string]interface{}, len(statuses))
		for name, status := range statuses {
			entry := gin.H{
				"healthy": status.Healthy,
				"latency": status.Latency.String(),
			}
			if status.Error != nil {
				healthy = false
				entry["error"] = status.Error.Error()
			}
			backends[name] = entry
		}

		code := http.StatusOK
		overall := "ok"
		if !healthy {
			code = http.StatusServiceUnavailable
			overall = "degraded"
		}

		c.JSON(code, gin.H{
			"status":   overall,
			"backends": backends,
		})
	}
}
