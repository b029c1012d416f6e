// @title           Manual Chat API
// @version         1.0
// @description     Question answering over indexed technical manuals with citations and streaming
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/data/store"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	jobmodel "github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/avolpe/manualchat/internal/handlers"
	"github.com/avolpe/manualchat/internal/job"
	"github.com/avolpe/manualchat/internal/rag"
	"github.com/avolpe/manualchat/internal/rag/embedding/googleEmbedding"
	"github.com/avolpe/manualchat/internal/rag/llm/gemini"
	"github.com/avolpe/manualchat/internal/rag/vectorDB/qdrantDB"
	"github.com/avolpe/manualchat/internal/server"
	"github.com/avolpe/manualchat/internal/worker"
	"github.com/avolpe/manualchat/pkg/logx"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logx.Init()
	var logger = logx.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          newJobStore(serviceContext, logger),
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	conversationStore := newConversationStore(serviceContext, logger)

	apiKey := os.Getenv(config.GoogleAPIKeyEnv)
	vectorDBClient := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, apiKey)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, apiKey)

	if vectorDBClient == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDBClient != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDBClient, llmProvider, embeddingService, conversationStore)

	handlers.InitJobHandler(service)
	handlers.InitRagHandler(ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func newJobStore(ctx context.Context, logger *logx.Logger) jobmodel.JobStore {
	if redisStore := store.GetRedisJobStore(ctx); redisStore != nil {
		return redisStore
	}
	logger.Error("Redis job store is offline, falling back to in-memory")
	return store.InitInMemoryJobStore()
}

func newConversationStore(ctx context.Context, logger *logx.Logger) convModel.ConversationStore {
	if redisStore := store.GetRedisConversationStore(ctx); redisStore != nil {
		return redisStore
	}
	logger.Error("Redis conversation store is offline, falling back to in-memory")
	return store.InitInMemoryConversationStore()
}
