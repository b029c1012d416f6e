package queryproc

import (
	"strings"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/convModel"
)

// EnrichQuery prefixes the question with recent conversation turns so the
// embedding captures follow-up context ("what about the other one?").
// User turns are carried verbatim; assistant turns are digested to their
// first MemoryAssistantDigest characters. With no history the question
// passes through untouched.
func EnrichQuery(query string, history []convModel.Message) string {
	if len(history) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range history {
		switch msg.Role {
		case convModel.RoleUser:
			b.WriteString("User: ")
			b.WriteString(msg.Content)
		case convModel.RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(digest(msg.Content, config.MemoryAssistantDigest))
		default:
			continue
		}
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent question: ")
	b.WriteString(query)
	return b.String()
}

func digest(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
