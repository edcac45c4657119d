package errors

import "google.golang.org/grpc/codes"

// Assistant service errors. Error codes use service code 21.
var (
	// Request errors (category 01)
	ErrAssistantInvalidRequest = Register(New(MakeCode(ServiceAssistant, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))
	ErrAssistantEmptyQuery     = Register(New(MakeCode(ServiceAssistant, CategoryRequest, 2), 400, codes.InvalidArgument, "Query text is required", "查询文本不能为空"))
	ErrAssistantQueryTooLong   = Register(New(MakeCode(ServiceAssistant, CategoryRequest, 3), 400, codes.InvalidArgument, "Query text exceeds maximum length", "查询文本超过最大长度"))

	// Resource errors (category 04)
	ErrChatNotFound    = Register(New(MakeCode(ServiceAssistant, CategoryResource, 1), 404, codes.NotFound, "Chat not found", "会话不存在"))
	ErrMessageNotFound = Register(New(MakeCode(ServiceAssistant, CategoryResource, 2), 404, codes.NotFound, "Message not found", "消息不存在"))

	// Pipeline errors (category 07)
	ErrQueryFailed     = Register(New(MakeCode(ServiceAssistant, CategoryInternal, 1), 500, codes.Internal, "Query processing failed", "查询处理失败"))
	ErrRetrievalFailed = Register(New(MakeCode(ServiceAssistant, CategoryInternal, 2), 500, codes.Internal, "Context retrieval failed", "上下文检索失败"))
	ErrIndexFailed     = Register(New(MakeCode(ServiceAssistant, CategoryInternal, 3), 500, codes.Internal, "Entity indexing failed", "实体索引失败"))
)

// Third-party dependency errors.
var (
	// Embedding provider (service 90)
	ErrEmbeddingFailed      = Register(New(MakeCode(ServiceThirdPartyEmbedding, CategoryNetwork, 1), 502, codes.Unavailable, "Embedding provider request failed", "向量化服务请求失败"))
	ErrEmbeddingRateLimited = Register(New(MakeCode(ServiceThirdPartyEmbedding, CategoryRateLimit, 1), 429, codes.ResourceExhausted, "Embedding provider rate limited", "向量化服务限流"))

	// Vector database (service 91)
	ErrVectorSearchFailed = Register(New(MakeCode(ServiceThirdPartyVectorDB, CategoryNetwork, 1), 502, codes.Unavailable, "Vector search failed", "向量检索失败"))
	ErrVectorWriteFailed  = Register(New(MakeCode(ServiceThirdPartyVectorDB, CategoryNetwork, 2), 502, codes.Unavailable, "Vector write failed", "向量写入失败"))

	// LLM provider (service 92)
	ErrLLMFailed  = Register(New(MakeCode(ServiceThirdPartyLLM, CategoryNetwork, 1), 502, codes.Unavailable, "LLM provider request failed", "大模型服务请求失败"))
	ErrLLMTimeout = Register(New(MakeCode(ServiceThirdPartyLLM, CategoryTimeout, 1), 504, codes.DeadlineExceeded, "LLM provider timeout", "大模型服务超时"))
)
