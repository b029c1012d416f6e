package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //local dev only - flip before exposing the service
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	ChunkSizeTokens    = 500 //token proxy budget per chunk
	ChunkOverlapBlocks = 5   //trailing blocks carried into the next chunk; line-sized blocks make this roughly a tenth of the budget
	DefaultConfidence  = 0.96
	DefaultLanguage    = "en"

	//retrieval
	TopKChunks          = 10
	ContextChunks       = 3 //passages handed to the model per answer
	SimilarityThreshold = 0.7

	//reranking weights
	RerankSimilarityWeight = 0.7
	RerankKeywordWeight    = 0.2
	RerankPositionWeight   = 0.1

	//conversational memory
	MemoryExchanges       = 3   //last user/assistant exchanges folded into the query
	MemoryAssistantDigest = 200 //assistant content truncated to this many chars
	QuotedTextLimit       = 200
	ContextTextLimit      = 500

	//embeddings
	EmbeddingOutputDimensionality int32 = 768
	EmbeddingBatchSize                  = 50
	EmbeddingMaxRetries                 = 3
	EmbeddingRetryBackoff               = 5 * time.Second
	GoogleEmbeddingModel                = "gemini-embedding-001"

	//google clients read the key from the environment
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"

	//llm
	GeminiModelName          = "gemini-2.5-flash-lite-preview-09-2025"
	ModelTemperature float32 = 0.3
	MaxOutputTokens  int32   = 2048
	GenerationTimeout        = 60 * time.Second
	EmbeddingTimeout         = 30 * time.Second

	//answer cache
	CacheCollection       = "answer_cache"
	CacheSimilarityCutoff = 0.95 //near-duplicate questions only

	//vectorDB
	CollectionPrefix        = "manuals_"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantKeepAliveTimeout  = 30 * time.Second

	//outbound http connection pooling
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 0 * time.Second //streamed answers outlive any fixed write deadline
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//ingest job buffer limit
	BufferLimit = 100

	//upload limits
	MaxUploadSizeBytes = 32 << 20

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestJobTimeout                = 10 * time.Minute

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore          = 0
	RedisConversationStore = 1

	//redis timeouts
	RedisJobStoreTTL          = 24 * time.Hour
	RedisConversationStoreTTL = 7 * 24 * time.Hour
)

// Categories is the closed set of manual categories. A document tagged with a
// category is only retrievable when that category (or all of them) is searched.
var Categories = []string{
	"machine_operation",
	"maintenance",
	"safety",
	"troubleshooting",
	"programming",
}

// IsValidCategory reports whether cat is one of the configured partitions.
func IsValidCategory(cat string) bool {
	for _, c := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}
