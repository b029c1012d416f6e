package rag_test

import (
	"context"
	"sync"

	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnSearch          func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error)
	OnUpsertPassages  func(ctx context.Context, category string, passages []manualModel.IndexedPassage, vectors [][]float32) error
	OnDeleteCategory  func(ctx context.Context, category string) error
	OnDeleteManual    func(ctx context.Context, category string, manualID string) error
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
}

func (m *MockVectorDB) EnsureCategory(ctx context.Context, category string) error { return nil }

func (m *MockVectorDB) Search(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, category, vector, limit, threshold)
	}
	return []manualModel.RetrievalResult{{
		ID:         "default",
		Text:       "default context",
		Meta:       manualModel.PassageMeta{ManualName: "Default Manual", PageNumber: 1},
		Similarity: 0.8,
	}}, nil
}

func (m *MockVectorDB) UpsertPassages(ctx context.Context, category string, passages []manualModel.IndexedPassage, vectors [][]float32) error {
	if m.OnUpsertPassages != nil {
		return m.OnUpsertPassages(ctx, category, passages, vectors)
	}
	return nil
}

func (m *MockVectorDB) DeleteCategory(ctx context.Context, category string) error {
	if m.OnDeleteCategory != nil {
		return m.OnDeleteCategory(ctx, category)
	}
	return nil
}

func (m *MockVectorDB) DeleteManual(ctx context.Context, category string, manualID string) error {
	if m.OnDeleteManual != nil {
		return m.OnDeleteManual(ctx, category, manualID)
	}
	return nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, queryVector)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate       func(ctx context.Context, systemInstruction string, prompt string) (string, error)
	OnGenerateStream func(ctx context.Context, systemInstruction string, prompt string, onDelta func(string) error) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemInstruction, prompt)
	}
	return "mock answer", nil
}

func (m *MockLLM) GenerateStream(ctx context.Context, systemInstruction string, prompt string, onDelta func(string) error) (string, error) {
	if m.OnGenerateStream != nil {
		return m.OnGenerateStream(ctx, systemInstruction, prompt, onDelta)
	}
	if err := onDelta("mock answer"); err != nil {
		return "", err
	}
	return "mock answer", nil
}

// MockConversations is a map-backed convModel.ConversationStore.
type MockConversations struct {
	mu        sync.Mutex
	Messages  map[string][]convModel.Message
	OnHistory func(ctx context.Context, conversationID string, limit int) ([]convModel.Message, error)
}

func NewMockConversations() *MockConversations {
	return &MockConversations{Messages: make(map[string][]convModel.Message)}
}

func (m *MockConversations) InitConversation(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Messages[conversationID]; !ok {
		m.Messages[conversationID] = nil
	}
	return nil
}

func (m *MockConversations) ValidateConversation(ctx context.Context, conversationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Messages[conversationID]
	return ok
}

func (m *MockConversations) AppendMessage(ctx context.Context, conversationID string, msg convModel.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[conversationID] = append(m.Messages[conversationID], msg)
	return nil
}

func (m *MockConversations) History(ctx context.Context, conversationID string, limit int) ([]convModel.Message, error) {
	if m.OnHistory != nil {
		return m.OnHistory(ctx, conversationID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.Messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
