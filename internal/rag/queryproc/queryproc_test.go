package queryproc

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

type mockVectorDB struct {
	SearchFunc func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error)
}

func (m *mockVectorDB) EnsureCategory(ctx context.Context, category string) error { return nil }
func (m *mockVectorDB) UpsertPassages(ctx context.Context, category string, passages []manualModel.IndexedPassage, vectors [][]float32) error {
	return nil
}
func (m *mockVectorDB) Search(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
	return m.SearchFunc(ctx, category, vector, limit, threshold)
}
func (m *mockVectorDB) DeleteCategory(ctx context.Context, category string) error { return nil }

func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	return "", false, nil
}

func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	return nil
}
func (m *mockVectorDB) DeleteManual(ctx context.Context, category string, manualID string) error {
	return nil
}

func TestPreprocess(t *testing.T) {
	cases := map[string]string{
		"  how   do I\treset\n the spindle?  ": "how do I reset the spindle?",
		"plain question":                       "plain question",
		"   ":                                  "",
		"CAPS and Punct!":                      "CAPS and Punct!",
	}
	for in, want := range cases {
		if got := Preprocess(in); got != want {
			t.Errorf("Preprocess(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnrichQueryNoHistory(t *testing.T) {
	q := "what next?"
	if got := EnrichQuery(q, nil); got != q {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestEnrichQueryDigestsAssistant(t *testing.T) {
	long := strings.Repeat("a", config.MemoryAssistantDigest+50)
	history := []convModel.Message{
		{Role: convModel.RoleUser, Content: "how do I zero the axis?"},
		{Role: convModel.RoleAssistant, Content: long},
	}

	got := EnrichQuery("and the Y axis?", history)

	if !strings.Contains(got, "User: how do I zero the axis?") {
		t.Error("user turn should be verbatim")
	}
	if strings.Contains(got, long) {
		t.Error("assistant turn should be truncated")
	}
	if !strings.Contains(got, strings.Repeat("a", config.MemoryAssistantDigest)) {
		t.Error("assistant digest missing")
	}
	if !strings.HasSuffix(got, "Current question: and the Y axis?") {
		t.Errorf("question should come last, got %q", got)
	}
}

func TestRerankWeights(t *testing.T) {
	// second hit has full keyword overlap, first has none; with equal
	// similarity the overlap term must flip the order despite the
	// position bonus favoring the first
	results := []manualModel.RetrievalResult{
		{ID: "a", Text: "completely unrelated words", Similarity: 0.8},
		{ID: "b", Text: "spindle alignment procedure", Similarity: 0.8},
	}

	ranked := Rerank("spindle alignment procedure", results)

	if ranked[0].ID != "b" {
		t.Fatalf("expected keyword-matching hit first, got %q", ranked[0].ID)
	}
	wantTop := 0.7*0.8 + 0.2*1.0 + 0.1*0.95
	if math.Abs(ranked[0].RerankScore-wantTop) > 1e-9 {
		t.Errorf("score = %v, want %v", ranked[0].RerankScore, wantTop)
	}
}

func TestRerankStableOnTies(t *testing.T) {
	// identical text and similarity: scores tie except for the position
	// bonus, so retrieval order must survive
	results := []manualModel.RetrievalResult{
		{ID: "first", Text: "same text", Similarity: 0.75},
		{ID: "second", Text: "same text", Similarity: 0.75},
		{ID: "third", Text: "same text", Similarity: 0.75},
	}

	ranked := Rerank("same text", results)

	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].ID != want {
			t.Errorf("position %d = %q, want %q", i, ranked[i].ID, want)
		}
	}
}

func TestRerankDeterministic(t *testing.T) {
	results := []manualModel.RetrievalResult{
		{ID: "a", Text: "alpha beta", Similarity: 0.9},
		{ID: "b", Text: "beta gamma", Similarity: 0.85},
		{ID: "c", Text: "gamma delta", Similarity: 0.8},
	}

	first := Rerank("beta gamma", results)
	second := Rerank("beta gamma", results)

	for i := range first {
		if first[i].ID != second[i].ID || first[i].RerankScore != second[i].RerankScore {
			t.Fatal("repeated rerank over identical input diverged")
		}
	}
}

func TestPositionBonusFloor(t *testing.T) {
	if got := positionBonus(0); got != 1.0 {
		t.Errorf("rank 0 bonus = %v, want 1.0", got)
	}
	if got := positionBonus(25); got != 0 {
		t.Errorf("rank 25 bonus = %v, want 0", got)
	}
}

func TestRetrieveSingleCategory(t *testing.T) {
	var searched []string
	db := &mockVectorDB{
		SearchFunc: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			searched = append(searched, category)
			if threshold != config.SimilarityThreshold {
				t.Errorf("threshold = %v, want %v", threshold, config.SimilarityThreshold)
			}
			return []manualModel.RetrievalResult{{ID: "x", Similarity: 0.9}}, nil
		},
	}

	hits, err := Retrieve(context.Background(), db, []float32{0.1}, "safety")
	if err != nil {
		t.Fatal(err)
	}
	if len(searched) != 1 || searched[0] != "safety" {
		t.Errorf("searched %v, want just safety", searched)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}
}

func TestRetrieveFansOutOnUnknownCategory(t *testing.T) {
	var searched []string
	db := &mockVectorDB{
		SearchFunc: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			searched = append(searched, category)
			return []manualModel.RetrievalResult{{ID: category, Similarity: 0.8}}, nil
		},
	}

	hits, err := Retrieve(context.Background(), db, []float32{0.1}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(searched) != len(config.Categories) {
		t.Errorf("searched %d partitions, want %d", len(searched), len(config.Categories))
	}
	if len(hits) != len(config.Categories) {
		t.Errorf("got %d merged hits, want %d", len(hits), len(config.Categories))
	}
}

func TestRetrieveMergeSortedBySimilarity(t *testing.T) {
	sims := map[string]float64{
		"machine_operation": 0.71,
		"maintenance":       0.95,
		"safety":            0.80,
		"troubleshooting":   0.72,
		"programming":       0.88,
	}
	db := &mockVectorDB{
		SearchFunc: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			return []manualModel.RetrievalResult{{ID: category, Similarity: sims[category]}}, nil
		},
	}

	hits, err := Retrieve(context.Background(), db, []float32{0.1}, "")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Similarity > hits[i-1].Similarity {
			t.Fatalf("merged hits not sorted: %v before %v", hits[i-1].Similarity, hits[i].Similarity)
		}
	}
	if hits[0].ID != "maintenance" {
		t.Errorf("top hit = %q, want maintenance", hits[0].ID)
	}
}

func TestRetrieveToleratesPartialFanOutFailure(t *testing.T) {
	db := &mockVectorDB{
		SearchFunc: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			if category == "safety" {
				return nil, errors.New("partition down")
			}
			return []manualModel.RetrievalResult{{ID: category, Similarity: 0.8}}, nil
		},
	}

	hits, err := Retrieve(context.Background(), db, []float32{0.1}, "")
	if err != nil {
		t.Fatal("one failed partition should not fail the query")
	}
	if len(hits) != len(config.Categories)-1 {
		t.Errorf("got %d hits, want %d", len(hits), len(config.Categories)-1)
	}
}

func TestRetrieveAllPartitionsFailing(t *testing.T) {
	db := &mockVectorDB{
		SearchFunc: func(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
			return nil, errors.New("store down")
		},
	}

	if _, err := Retrieve(context.Background(), db, []float32{0.1}, ""); err == nil {
		t.Fatal("expected error when every partition fails")
	}
}
