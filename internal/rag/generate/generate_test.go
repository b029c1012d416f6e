package generate

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

type mockProvider struct {
	GenerateFunc       func(ctx context.Context, systemInstruction string, prompt string) (string, error)
	GenerateStreamFunc func(ctx context.Context, systemInstruction string, prompt string, onDelta func(string) error) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	return m.GenerateFunc(ctx, systemInstruction, prompt)
}

func (m *mockProvider) GenerateStream(ctx context.Context, systemInstruction string, prompt string, onDelta func(string) error) (string, error) {
	return m.GenerateStreamFunc(ctx, systemInstruction, prompt, onDelta)
}

func passage(id, manual string, page int, text string, sim float64) manualModel.RankedResult {
	return manualModel.RankedResult{
		RetrievalResult: manualModel.RetrievalResult{
			ID:   id,
			Text: text,
			Meta: manualModel.PassageMeta{
				ManualName: manual,
				ManualFile: manual + ".pdf",
				PageNumber: page,
				BBox:       manualModel.BBox{X0: 1, Y0: 2, X1: 3, Y1: 4},
			},
			Similarity: sim,
		},
	}
}

func TestSystemInstructionByCategory(t *testing.T) {
	safety := SystemInstruction("safety")
	if !strings.Contains(safety, "safety precautions") {
		t.Error("safety instruction missing category sentence")
	}
	if !strings.HasPrefix(safety, baseInstruction) {
		t.Error("category instruction must extend the base")
	}
	if SystemInstruction("unknown_category") != baseInstruction {
		t.Error("unknown category must get the base instruction only")
	}
	if SystemInstruction("") != baseInstruction {
		t.Error("empty category must get the base instruction only")
	}
}

func TestBuildPromptNumbersContext(t *testing.T) {
	passages := []manualModel.RankedResult{
		passage("a", "Rover A", 12, "spindle speed table", 0.9),
		passage("b", "Rover B", 3, "lubrication schedule", 0.8),
	}

	prompt := BuildPrompt("how fast can the spindle go?", passages)

	if !strings.Contains(prompt, "[1] Rover A, page 12: spindle speed table") {
		t.Errorf("first context entry malformed:\n%s", prompt)
	}
	if !strings.Contains(prompt, "[2] Rover B, page 3: lubrication schedule") {
		t.Errorf("second context entry malformed:\n%s", prompt)
	}
	if !strings.Contains(prompt, "how fast can the spindle go?") {
		t.Error("question missing from prompt")
	}
	if strings.Index(prompt, "[1]") > strings.Index(prompt, "User Question") {
		t.Error("context must precede the question")
	}
}

func TestBuildPromptTruncatesLongPassages(t *testing.T) {
	long := strings.Repeat("x", 800)
	prompt := BuildPrompt("q", []manualModel.RankedResult{passage("a", "M", 1, long, 0.9)})

	if strings.Contains(prompt, long) {
		t.Error("passage text should be truncated in the prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 500)+"...") {
		t.Error("expected 500-char preview with ellipsis")
	}
}

func TestBuildCitationsPositional(t *testing.T) {
	long := strings.Repeat("q", 350)
	passages := []manualModel.RankedResult{
		passage("a", "Rover A", 12, "short quote", 0.9),
		passage("b", "Rover B", 3, long, 0.8),
	}

	citations := BuildCitations(passages)

	if len(citations) != 2 {
		t.Fatalf("got %d citations, want one per passage", len(citations))
	}
	if citations[0].ID != "cite_1" || citations[1].ID != "cite_2" {
		t.Errorf("citation ids out of order: %s, %s", citations[0].ID, citations[1].ID)
	}
	if citations[0].QuotedText != "short quote" {
		t.Errorf("short quote should be verbatim, got %q", citations[0].QuotedText)
	}
	if len(citations[1].QuotedText) != 200 {
		t.Errorf("quoted text length = %d, want 200", len(citations[1].QuotedText))
	}
	if citations[0].Source.PageNumber != 12 {
		t.Errorf("citation lost page number: %d", citations[0].Source.PageNumber)
	}
	if citations[0].Source.BBox.IsZero() {
		t.Error("citation lost bbox")
	}
}

func TestConfidence(t *testing.T) {
	none := Confidence(nil)
	if none != 0.0 {
		t.Errorf("no context confidence = %v, want 0", none)
	}

	two := Confidence([]manualModel.RankedResult{
		passage("a", "M", 1, "t", 0.8),
		passage("b", "M", 1, "t", 0.9),
	})
	if math.Abs(two-0.85) > 1e-9 {
		t.Errorf("two-source confidence = %v, want 0.85 (no bonus)", two)
	}

	three := Confidence([]manualModel.RankedResult{
		passage("a", "M", 1, "t", 0.7),
		passage("b", "M", 1, "t", 0.7),
		passage("c", "M", 1, "t", 0.7),
	})
	if math.Abs(three-0.8) > 1e-9 {
		t.Errorf("three-source confidence = %v, want 0.7+0.1", three)
	}

	capped := Confidence([]manualModel.RankedResult{
		passage("a", "M", 1, "t", 0.99),
		passage("b", "M", 1, "t", 0.99),
		passage("c", "M", 1, "t", 0.99),
	})
	if capped != 0.95 {
		t.Errorf("confidence = %v, want cap at 0.95", capped)
	}
}

func TestDetectActions(t *testing.T) {
	cases := []struct {
		answer string
		types  []string
	}{
		{"Open the Analytics Dashboard to monitor spindle load.", []string{"navigation"}},
		{"A summary report can be exported from the menu.", []string{"download"}},
		{"The cycle takes approximately 40 seconds.", []string{"refine"}},
		{"Check the dashboard for a summary, it takes roughly a minute.", []string{"navigation", "download", "refine"}},
		{"Tighten the bolt to 25 Nm.", nil},
	}

	for _, tc := range cases {
		actions := DetectActions(tc.answer)
		if len(actions) != len(tc.types) {
			t.Errorf("%q: got %d actions, want %d", tc.answer, len(actions), len(tc.types))
			continue
		}
		for i, typ := range tc.types {
			if actions[i].Type != typ {
				t.Errorf("%q: action %d = %q, want %q", tc.answer, i, actions[i].Type, typ)
			}
		}
	}
}

func TestAnswerNoContextSkipsModel(t *testing.T) {
	called := false
	engine := NewEngine(&mockProvider{
		GenerateFunc: func(ctx context.Context, si, prompt string) (string, error) {
			called = true
			return "should not happen", nil
		},
	})

	res, err := engine.Answer(context.Background(), "safety", "anything?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("model must not be invoked with empty context")
	}
	if res.Answer != NoResultsAnswer {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0", res.Confidence)
	}
	if len(res.Citations) != 0 || len(res.Sources) != 0 {
		t.Error("no-results answer must carry no citations or sources")
	}
}

func TestAnswerBuildsFullResult(t *testing.T) {
	engine := NewEngine(&mockProvider{
		GenerateFunc: func(ctx context.Context, si, prompt string) (string, error) {
			if !strings.Contains(si, "error codes") {
				t.Error("troubleshooting instruction not passed through")
			}
			return "Reset the controller [1]. The full procedure is in the report.", nil
		},
	})

	passages := []manualModel.RankedResult{
		passage("a", "Rover A", 4, "reset procedure", 0.9),
		passage("b", "Rover A", 5, "error table", 0.8),
		passage("c", "Rover B", 9, "controller basics", 0.75),
	}

	res, err := engine.Answer(context.Background(), "troubleshooting", "how do I clear E42?", passages)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Citations) != 3 || len(res.Sources) != 3 {
		t.Errorf("got %d citations and %d sources, want 3 each", len(res.Citations), len(res.Sources))
	}
	wantConf := (0.9+0.8+0.75)/3 + 0.1
	if math.Abs(res.Confidence-wantConf) > 1e-9 {
		t.Errorf("confidence = %v, want %v", res.Confidence, wantConf)
	}
	if len(res.Actions) != 1 || res.Actions[0].Type != "download" {
		t.Errorf("expected one download action from 'report', got %v", res.Actions)
	}
}

func TestAnswerStreamConcatenationMatchesResult(t *testing.T) {
	chunks := []string{"Tighten ", "the belt ", "to 40 Nm."}
	engine := NewEngine(&mockProvider{
		GenerateStreamFunc: func(ctx context.Context, si, prompt string, onDelta func(string) error) (string, error) {
			var full strings.Builder
			for _, c := range chunks {
				if err := onDelta(c); err != nil {
					return full.String(), err
				}
				full.WriteString(c)
			}
			return full.String(), nil
		},
	})

	var streamed strings.Builder
	res, err := engine.AnswerStream(context.Background(), "", "belt tension?",
		[]manualModel.RankedResult{passage("a", "M", 2, "belt tensioning", 0.85)},
		func(delta string) error {
			streamed.WriteString(delta)
			return nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if streamed.String() != res.Answer {
		t.Errorf("streamed %q != final answer %q", streamed.String(), res.Answer)
	}
}

func TestAnswerStreamErrorYieldsNoResult(t *testing.T) {
	engine := NewEngine(&mockProvider{
		GenerateStreamFunc: func(ctx context.Context, si, prompt string, onDelta func(string) error) (string, error) {
			_ = onDelta("partial ")
			return "partial ", errors.New("stream died")
		},
	})

	res, err := engine.AnswerStream(context.Background(), "", "q",
		[]manualModel.RankedResult{passage("a", "M", 1, "t", 0.8)},
		func(string) error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Error("a failed stream must not produce a result")
	}
}
