package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/customHttpClient"
	"github.com/avolpe/manualchat/internal/rag/embedding"
	"github.com/avolpe/manualchat/pkg/logx"
	"google.golang.org/genai"
)

var logger *logx.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: customHttpClient.Pooled()})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

// GetEmbedding embeds one search query with the query task type, so it
// lands in the same space as the RETRIEVAL_DOCUMENT passage vectors.
func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	ctx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	result, err := c.doCall(ctx, genai.Text(query), "RETRIEVAL_QUERY")
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

// BatchEmbedding embeds passage texts in slices of EmbeddingBatchSize.
// Rate-limit responses are retried with a fixed backoff, everything else
// fails the whole batch so the caller can fail the ingestion cleanly.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += config.EmbeddingBatchSize {
		end := min(start+config.EmbeddingBatchSize, len(texts))

		res, err := c.embedSlice(ctx, texts[start:end], log)
		if err != nil {
			log.Error("Error getting batch embeddings from Google", "error", err, "offset", start)
			return nil, err
		}
		for _, r := range res.Embeddings {
			results = append(results, r.Values)
		}
	}

	if len(results) != len(texts) {
		return nil, errors.New("embedding response shorter than request")
	}
	return results, nil
}

func (c *client) embedSlice(ctx context.Context, texts []string, log *logx.Logger) (*genai.EmbedContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= config.EmbeddingMaxRetries; attempt++ {
		res, err := c.doCall(ctx, getContent(texts), "RETRIEVAL_DOCUMENT")
		if err == nil && res != nil {
			return res, nil
		}
		lastErr = err
		if !doRetry(err, log) {
			return nil, err
		}
		log.Debug("Retrying after backoff", "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(config.EmbeddingRetryBackoff):
		}
	}
	return nil, lastErr
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
}
