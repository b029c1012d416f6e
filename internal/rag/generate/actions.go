package generate

import (
	"strings"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// ActionRule is one independently evaluable detector over the final
// answer text. Rules are additive: any subset may fire, and a new action
// type is a new rule value, not a new branch.
type ActionRule struct {
	Name     string
	Keywords []string
	Action   manualModel.Action
}

var actionRules = []ActionRule{
	{
		Name:     "navigation",
		Keywords: []string{"dashboard", "analytics", "overview", "status page"},
		Action: manualModel.Action{
			Type:   "navigation",
			Label:  "View Dashboard",
			Params: map[string]string{"target": "dashboard"},
		},
	},
	{
		Name:     "download",
		Keywords: []string{"summary", "report", "export"},
		Action: manualModel.Action{
			Type:   "download",
			Label:  "Download Report",
			Params: map[string]string{"format": "pdf"},
		},
	},
	{
		Name:     "refine",
		Keywords: []string{"approximately", "roughly", "estimate"},
		Action: manualModel.Action{
			Type:   "refine",
			Label:  "Refine Question",
			Params: map[string]string{"reason": "imprecise_answer"},
		},
	},
}

// Matches reports whether any of the rule's keywords occur in the text,
// case-insensitively.
func (r ActionRule) Matches(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DetectActions scans the answer against every rule; each firing rule
// contributes its action once, in rule order.
func DetectActions(answer string) []manualModel.Action {
	var actions []manualModel.Action
	for _, rule := range actionRules {
		if rule.Matches(answer) {
			actions = append(actions, rule.Action)
		}
	}
	return actions
}
