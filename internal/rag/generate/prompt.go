package generate

import (
	"fmt"
	"strings"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// BuildPrompt assembles the grounded user prompt: numbered context
// entries followed by the question and answering instructions. The
// numbering order is the citation order - citations are synthesized
// positionally from the same slice.
func BuildPrompt(query string, passages []manualModel.RankedResult) string {
	var b strings.Builder

	b.WriteString("## Relevant Documentation\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s, page %d: %s\n\n",
			i+1, p.Meta.ManualName, p.Meta.PageNumber, contextText(p.Text))
	}

	b.WriteString("## User Question\n")
	b.WriteString(query)
	b.WriteString("\n\n## Instructions\n")
	b.WriteString(`1. Provide a clear, accurate answer based on the documentation above
2. Cite your sources using numbered references like [1], [2], etc.
3. Reference specific page numbers when available
4. Be concise but thorough
5. If the documentation doesn't contain the answer, say "This information is not available in the current documentation."

## Answer:`)

	return b.String()
}

func contextText(text string) string {
	runes := []rune(text)
	if len(runes) <= config.ContextTextLimit {
		return text
	}
	return string(runes[:config.ContextTextLimit]) + "..."
}
