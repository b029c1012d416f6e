package queryproc

import (
	"sort"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// Rerank blends vector similarity with lexical overlap and the original
// retrieval position:
//
//	score = 0.7*similarity + 0.2*keywordOverlap + 0.1*positionBonus
//
// The sort is stable, so equal scores keep their retrieval order and
// repeated calls over the same input always rank identically.
func Rerank(query string, results []manualModel.RetrievalResult) []manualModel.RankedResult {
	queryWords := Keywords(query)

	ranked := make([]manualModel.RankedResult, len(results))
	for i, res := range results {
		ranked[i] = manualModel.RankedResult{
			RetrievalResult: res,
			RerankScore: config.RerankSimilarityWeight*res.Similarity +
				config.RerankKeywordWeight*keywordOverlap(queryWords, res.Text) +
				config.RerankPositionWeight*positionBonus(i),
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].RerankScore > ranked[b].RerankScore
	})
	return ranked
}

// keywordOverlap is the fraction of query words also present in the
// passage. An empty query contributes nothing.
func keywordOverlap(queryWords map[string]struct{}, passage string) float64 {
	if len(queryWords) == 0 {
		return 0
	}
	passageWords := Keywords(passage)
	shared := 0
	for w := range queryWords {
		if _, ok := passageWords[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(queryWords))
}

// positionBonus rewards passages the vector store already ranked high,
// decaying by 0.05 per position and bottoming out at zero.
func positionBonus(rank int) float64 {
	bonus := 1.0 - 0.05*float64(rank)
	if bonus < 0 {
		return 0
	}
	return bonus
}
