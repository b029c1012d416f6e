package gemini

import (
	"errors"
	"strings"
	"sync"

	"context"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/customHttpClient"
	"github.com/avolpe/manualchat/internal/rag/llm"
	"github.com/avolpe/manualchat/pkg/logx"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logx.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: customHttpClient.Pooled()})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}

func (c *llmClient) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	ctx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		contentConfig(systemInstruction),
	)
	if err != nil {
		log.Error("Error generating content:", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("empty generation response")
	}
	return result.Text(), nil
}

// GenerateStream forwards every model chunk to onDelta in arrival order.
// If ctx is cancelled mid-stream the partial text generated so far is
// returned together with the cancellation error.
func (c *llmClient) GenerateStream(ctx context.Context, systemInstruction string, prompt string, onDelta func(delta string) error) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	ctx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(
		ctx,
		c.modelName,
		genai.Text(prompt),
		contentConfig(systemInstruction),
	) {
		if err != nil {
			log.Error("Error streaming content:", "error", err)
			return full.String(), err
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	return full.String(), nil
}

func contentConfig(systemInstruction string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemInstruction},
			},
		},
		Temperature:     genai.Ptr(float32(config.ModelTemperature)),
		MaxOutputTokens: config.MaxOutputTokens,
	}
}
