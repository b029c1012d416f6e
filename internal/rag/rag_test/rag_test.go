package rag_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/rag"
	"github.com/avolpe/manualchat/internal/rag/generate"
	"github.com/avolpe/manualchat/internal/stream"
)

func newService(v *MockVectorDB, l *MockLLM, e *MockEmbedder, c *MockConversations) rag.Service {
	if v == nil {
		v = &MockVectorDB{}
	}
	if l == nil {
		l = &MockLLM{}
	}
	if e == nil {
		e = &MockEmbedder{}
	}
	if c == nil {
		c = NewMockConversations()
	}
	return rag.NewService(v, l, e, c)
}

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		wantErr    bool
		wantAnswer string
	}{
		{
			name:       "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {},
			wantAnswer: "mock answer",
		},
		{
			name: "Embedding_Failure",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("quota exhausted")
				}
			},
			wantErr: true,
		},
		{
			name: "VectorDB_Failure",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
					return nil, errors.New("store down")
				}
			},
			wantErr: true,
		},
		{
			name: "LLM_Failure",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, si, prompt string) (string, error) {
					return "", errors.New("model unavailable")
				}
			},
			wantErr: true,
		},
		{
			name: "Zero_Hits_Answers_Without_Model",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
					return nil, nil
				}
				l.OnGenerate = func(ctx context.Context, si, prompt string) (string, error) {
					t.Error("model must not be called with zero hits")
					return "", nil
				}
			},
			wantAnswer: generate.NoResultsAnswer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, v, l := &MockEmbedder{}, &MockVectorDB{}, &MockLLM{}
			tc.setupMocks(e, v, l)
			svc := newService(v, l, e, nil)

			out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
				Question: "how do I reset the spindle?",
				Category: "troubleshooting",
			})

			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out.Answer != tc.wantAnswer {
				t.Errorf("answer = %q, want %q", out.Answer, tc.wantAnswer)
			}
			if out.ConversationID == "" {
				t.Error("missing conversation id should have been minted")
			}
			if !strings.HasPrefix(out.MessageID, "msg_") {
				t.Errorf("message id = %q", out.MessageID)
			}
		})
	}
}

func TestProcessQueryPersistsExchangeWhenMemoryEnabled(t *testing.T) {
	conv := NewMockConversations()
	svc := newService(nil, nil, nil, conv)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question:      "oil change interval?",
		Category:      "maintenance",
		MemoryEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	msgs := conv.Messages[out.ConversationID]
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want user+assistant", len(msgs))
	}
	if msgs[0].Role != convModel.RoleUser || msgs[1].Role != convModel.RoleAssistant {
		t.Errorf("roles = %v, %v", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].ID != out.MessageID {
		t.Error("assistant message id must match the response message id")
	}
}

func TestProcessQueryMemoryDisabledPersistsNothing(t *testing.T) {
	conv := NewMockConversations()
	conv.OnHistory = func(ctx context.Context, id string, limit int) ([]convModel.Message, error) {
		t.Error("history must not be consulted with memory disabled")
		return nil, nil
	}
	svc := newService(nil, nil, nil, conv)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question:      "first question",
		MemoryEnabled: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages[out.ConversationID]) != 0 {
		t.Error("messages persisted despite memory disabled")
	}
}

func TestProcessQueryEnrichesWithHistory(t *testing.T) {
	conv := NewMockConversations()
	_ = conv.AppendMessage(context.Background(), "conv-1", convModel.Message{
		Role: convModel.RoleUser, Content: "tell me about the spindle motor",
	})

	var embedded string
	e := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			embedded = text
			return []float32{0.1}, nil
		},
	}
	svc := newService(nil, nil, e, conv)

	_, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question:       "what about its bearings?",
		ConversationID: "conv-1",
		MemoryEnabled:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(embedded, "spindle motor") {
		t.Errorf("embedded query not enriched with history: %q", embedded)
	}
	if !strings.Contains(embedded, "what about its bearings?") {
		t.Errorf("embedded query lost the question: %q", embedded)
	}
}

func TestProcessQueryReranksWithEnrichedQuery(t *testing.T) {
	conv := NewMockConversations()
	_ = conv.AppendMessage(context.Background(), "conv-2", convModel.Message{
		Role: convModel.RoleUser, Content: "walk me through spindle alignment",
	})

	// two hits with identical similarity: only the history keywords can
	// break the tie in favor of the second one
	v := &MockVectorDB{
		OnSearch: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			return []manualModel.RetrievalResult{
				{ID: "b", Text: "coolant tank refill steps", Meta: manualModel.PassageMeta{ManualName: "Coolant Guide", PageNumber: 4}, Similarity: 0.5},
				{ID: "a", Text: "spindle alignment procedure", Meta: manualModel.PassageMeta{ManualName: "Spindle Manual", PageNumber: 12}, Similarity: 0.5},
			}, nil
		},
	}
	svc := newService(v, nil, nil, conv)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question:       "how long does that take?",
		Category:       "maintenance",
		ConversationID: "conv-2",
		MemoryEnabled:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sources) == 0 {
		t.Fatal("no sources")
	}
	if out.Sources[0].ManualName != "Spindle Manual" {
		t.Errorf("top source = %q, history keywords should outrank retrieval position", out.Sources[0].ManualName)
	}
}

func TestDeleteCategory(t *testing.T) {
	var gotCategory string
	v := &MockVectorDB{
		OnDeleteCategory: func(ctx context.Context, category string) error {
			gotCategory = category
			return nil
		},
	}
	svc := newService(v, nil, nil, nil)

	if err := svc.DeleteCategory(context.Background(), "safety"); err != nil {
		t.Fatal(err)
	}
	if gotCategory != "safety" {
		t.Errorf("delegated category = %q", gotCategory)
	}

	v.OnDeleteCategory = func(ctx context.Context, category string) error {
		return errors.New("conn refused")
	}
	if err := svc.DeleteCategory(context.Background(), "safety"); err == nil {
		t.Error("store failure must surface")
	}
}

func TestProcessQueryAnswerCacheHitSkipsGeneration(t *testing.T) {
	v := &MockVectorDB{
		OnGetCachedAnswer: func(ctx context.Context, queryVector []float32) (string, bool, error) {
			return "bleed the hydraulic line first", true, nil
		},
	}
	l := &MockLLM{
		OnGenerate: func(ctx context.Context, si, prompt string) (string, error) {
			t.Error("generation must be skipped on a cache hit")
			return "", nil
		},
	}
	svc := newService(v, l, nil, nil)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question: "how do I bleed the hydraulics?",
		Category: "maintenance",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Answer != "bleed the hydraulic line first" {
		t.Errorf("answer = %q, want the cached one", out.Answer)
	}
	// sources and confidence still come from this query's own retrieval
	if len(out.Sources) == 0 || out.Sources[0].ManualName != "Default Manual" {
		t.Errorf("sources = %+v, want this retrieval's passages", out.Sources)
	}
}

func TestProcessQueryAnswerCacheMissSavesAnswer(t *testing.T) {
	var saved string
	v := &MockVectorDB{
		OnSaveToCache: func(ctx context.Context, id string, vector []float32, answer string) error {
			saved = answer
			return nil
		},
	}
	svc := newService(v, nil, nil, nil)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question: "oil change interval?",
		Category: "maintenance",
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved != out.Answer {
		t.Errorf("cached %q, want the generated answer %q", saved, out.Answer)
	}
}

func TestProcessQueryZeroHitsBypassesAnswerCache(t *testing.T) {
	v := &MockVectorDB{
		OnSearch: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			return nil, nil
		},
		OnGetCachedAnswer: func(ctx context.Context, queryVector []float32) (string, bool, error) {
			t.Error("cache must not be consulted without retrieval context")
			return "", false, nil
		},
		OnSaveToCache: func(ctx context.Context, id string, vector []float32, answer string) error {
			t.Error("a no-context answer must not be cached")
			return nil
		},
	}
	svc := newService(v, nil, nil, nil)

	out, err := svc.ProcessQuery(context.Background(), rag.QueryInput{
		Question: "something nobody wrote down",
		Category: "maintenance",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Answer != generate.NoResultsAnswer {
		t.Errorf("answer = %q", out.Answer)
	}
}

func TestStreamQuery(t *testing.T) {
	l := &MockLLM{
		OnGenerateStream: func(ctx context.Context, si, prompt string, onDelta func(string) error) (string, error) {
			for _, d := range []string{"Loosen ", "the collet ", "first."} {
				if err := onDelta(d); err != nil {
					return "", err
				}
			}
			return "Loosen the collet first.", nil
		},
	}
	svc := newService(nil, l, nil, nil)

	var buf bytes.Buffer
	err := svc.StreamQuery(context.Background(), rag.QueryInput{
		Question: "how do I change the tool?",
		Category: "machine_operation",
	}, stream.NewWriter(&buf))
	if err != nil {
		t.Fatal(err)
	}

	events, sawFinal, err := stream.Collect(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !sawFinal {
		t.Fatal("stream must end with a final event")
	}
	if events[0].Type != stream.EventMetadata {
		t.Errorf("first event = %v, want metadata", events[0].Type)
	}
	if len(events[0].Sources) == 0 {
		t.Error("metadata must carry the resolved sources")
	}

	var answer strings.Builder
	for _, ev := range events {
		if ev.Type == stream.EventContent {
			answer.WriteString(ev.Content)
		}
	}
	if answer.String() != "Loosen the collet first." {
		t.Errorf("concatenated content = %q", answer.String())
	}

	last := events[len(events)-1]
	if last.Type != stream.EventFinal {
		t.Errorf("last event = %v, want final", last.Type)
	}
	if last.MessageID == "" || last.Confidence == nil {
		t.Error("final event missing message id or confidence")
	}
}

func TestStreamQueryFailureEmitsNoFinal(t *testing.T) {
	l := &MockLLM{
		OnGenerateStream: func(ctx context.Context, si, prompt string, onDelta func(string) error) (string, error) {
			_ = onDelta("partial ")
			return "partial ", errors.New("connection reset")
		},
	}
	svc := newService(nil, l, nil, nil)

	var buf bytes.Buffer
	err := svc.StreamQuery(context.Background(), rag.QueryInput{Question: "q"}, stream.NewWriter(&buf))
	if err == nil {
		t.Fatal("expected error")
	}

	_, sawFinal, err := stream.Collect(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if sawFinal {
		t.Error("failed stream must not contain a final event")
	}
}
