// Package assistant provides the TeamSync assistant server implementation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/teamsync/internal/assistant/biz"
	"github.com/kart-io/teamsync/internal/assistant/handler"
	"github.com/kart-io/teamsync/internal/assistant/router"
	"github.com/kart-io/teamsync/internal/assistant/store"
	"github.com/kart-io/teamsync/pkg/component/milvus"
	"github.com/kart-io/teamsync/pkg/component/mongodb"
	"github.com/kart-io/teamsync/pkg/component/storage"
	"github.com/kart-io/teamsync/pkg/infra/pool"
	"github.com/kart-io/teamsync/pkg/llm"

	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/teamsync/pkg/llm/ollama"
	_ "github.com/kart-io/teamsync/pkg/llm/openai"
	"github.com/kart-io/teamsync/pkg/llm/resilience"
	assistantopts "github.com/kart-io/teamsync/pkg/options/assistant"
	cacheopts "github.com/kart-io/teamsync/pkg/options/cache"
	httpopts "github.com/kart-io/teamsync/pkg/options/http"
	jwtopts "github.com/kart-io/teamsync/pkg/options/jwt"
	llmopts "github.com/kart-io/teamsync/pkg/options/llm"
	logopts "github.com/kart-io/teamsync/pkg/options/logger"
	milvusopts "github.com/kart-io/teamsync/pkg/options/milvus"
)

// Name is the name of the application.
const Name = "teamsync-assistant"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MongoOptions     *mongodb.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	AssistantOptions *assistantopts.Options
	CacheOptions     *cacheopts.Options
	JWTOptions       *jwtopts.Options
}

// Server represents the assistant server.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	storages        *storage.Manager
	milvusClose     func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting assistant service...")

	storages := storage.NewManager()

	// 2. 初始化 MongoDB 客户端
	mongoClient, err := mongodb.NewWithContext(ctx, cfg.MongoOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongodb: %w", err)
	}
	storages.MustRegister("mongodb", mongoClient)

	conversations := store.NewMongoStore(mongoClient.Database())
	if err := conversations.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure mongodb indexes: %w", err)
	}
	logger.Infow("MongoDB client initialized", "database", cfg.MongoOptions.Database)

	// 3. 初始化 Milvus 客户端
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		_ = storages.CloseAll()
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}

	vectorIndex := store.NewMilvusIndex(milvusClient)
	for _, collection := range cfg.AssistantOptions.Collections {
		if err := vectorIndex.EnsureCollection(ctx, collection, cfg.AssistantOptions.Dimension); err != nil {
			_ = milvusClient.Close(context.Background())
			_ = storages.CloseAll()
			return nil, fmt.Errorf("failed to ensure collection %q: %w", collection, err)
		}
	}
	logger.Infow("Milvus client initialized",
		"collections", cfg.AssistantOptions.Collections,
		"dimension", cfg.AssistantOptions.Dimension,
	)

	// 4. 初始化 Redis 客户端（embedding 缓存）
	var embeddingCache *biz.EmbeddingCache
	if cfg.CacheOptions.Enabled && cfg.CacheOptions.Redis != nil {
		redisOpts := cfg.CacheOptions.Redis
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:         redisOpts.Addr(),
			Password:     redisOpts.Password,
			DB:           redisOpts.Database,
			MaxRetries:   redisOpts.MaxRetries,
			PoolSize:     redisOpts.PoolSize,
			MinIdleConns: redisOpts.MinIdleConns,
			DialTimeout:  redisOpts.DialTimeout,
			ReadTimeout:  redisOpts.ReadTimeout,
			WriteTimeout: redisOpts.WriteTimeout,
		})

		// 连接失败时降级为无缓存
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnw("failed to connect to redis, embedding cache disabled", "error", err.Error())
			_ = redisClient.Close()
		} else {
			embeddingCache = biz.NewEmbeddingCache(redisClient, &biz.EmbeddingCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			storages.MustRegister("redis", &redisAdapter{client: redisClient})
			logger.Infow("Redis embedding cache initialized",
				"addr", redisOpts.Addr(),
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Embedding cache is disabled")
	}
	if embeddingCache == nil {
		embeddingCache = biz.NewEmbeddingCache(nil, nil)
	}

	// 5. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		_ = milvusClient.Close(context.Background())
		_ = storages.CloseAll()
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	resilientEmbed := resilience.NewResilientEmbeddingProvider(embedProvider, nil, nil)
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		_ = milvusClient.Close(context.Background())
		_ = storages.CloseAll()
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	resilientChat := resilience.NewResilientChatProvider(chatProvider, nil, nil)
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 6. 初始化协程池
	if err := pool.InitGlobal(); err != nil {
		return nil, fmt.Errorf("failed to initialize worker pools: %w", err)
	}

	// 7. 初始化 Biz 层
	chatService := biz.NewChatService(conversations)
	retriever := biz.NewRetriever(vectorIndex, resilientEmbed, embeddingCache, &biz.RetrieverConfig{
		Collections:    cfg.AssistantOptions.Collections,
		TopK:           cfg.AssistantOptions.TopK,
		MaxQueryLength: cfg.AssistantOptions.MaxQueryLength,
	})
	generator := biz.NewGenerator(resilientChat)
	orchestrator := biz.NewOrchestrator(chatService, retriever, generator)
	indexer := biz.NewIndexer(vectorIndex, resilientEmbed, &biz.IndexerConfig{
		DefaultCollection: assistantopts.DefaultCollection,
		CollectionByType:  biz.DefaultCollectionByType(),
		Collections:       cfg.AssistantOptions.Collections,
		MaxTextLength:     cfg.AssistantOptions.MaxTextLength,
	})
	logger.Info("Assistant service initialized")

	// 8. 初始化 Handler 层与路由
	h := handler.New(&handler.Config{
		Orchestrator:      orchestrator,
		Chats:             chatService,
		Indexer:           indexer,
		Index:             vectorIndex,
		Collections:       cfg.AssistantOptions.Collections,
		EmbeddingProvider: fmt.Sprintf("%s/%s", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model),
		ChatProvider:      fmt.Sprintf("%s/%s", cfg.ChatOptions.Provider, cfg.ChatOptions.Model),
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	router.Register(engine, &router.Config{
		Handler: h,
		Storage: storages,
		JWT:     cfg.JWTOptions,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	logger.Info("Assistant service is ready")
	return &Server{
		httpServer:      httpServer,
		shutdownTimeout: cfg.HTTPOptions.ShutdownTimeout,
		storages:        storages,
		milvusClose:     func() { _ = milvusClient.Close(context.Background()) },
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down assistant service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("Assistant service stopped")
	return nil
}

func (s *Server) cleanup() {
	if s.milvusClose != nil {
		s.milvusClose()
	}
	if err := s.storages.CloseAll(); err != nil {
		logger.Warnw("failed to close storage clients", "error", err.Error())
	}
	if err := pool.CloseGlobalTimeout(10 * time.Second); err != nil {
		logger.Warnw("failed to release worker pools", "error", err.Error())
	}
}

// redisAdapter 让 go-redis 客户端接入统一的存储健康检查。
type redisAdapter struct {
	client *goredis.Client
}

func (a *redisAdapter) Name() string                   { return "redis" }
func (a *redisAdapter) Ping(ctx context.Context) error { return a.client.Ping(ctx).Err() }
func (a *redisAdapter) Close() error                   { return a.client.Close() }
