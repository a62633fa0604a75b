package ml

import (
	"context"
	"regexp"
	"strings"

	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/adapter"
)

var _ adapter.Classifier = (*KeywordClassifier)(nil)

// categoryRule order is the tie-break: Legal > Billing > Technical.
var categoryRules = []struct {
	category model.Category
	keywords []string
}{
	{model.CategoryLegal, []string{"lawyer", "legal", "compliance", "gdpr", "contract", "lawsuit", "subpoena"}},
	{model.CategoryBilling, []string{"invoice", "payment", "refund", "subscription", "charge", "billing", "credit card"}},
	{model.CategoryTechnical, []string{"error", "bug", "crash", "login", "api", "broken", "not working", "down", "outage"}},
}

var urgencyPattern = regexp.MustCompile(
	`(?i)\b(ASAP|urgent|critical|broken|down|outage|emergency|immediately|` +
		`high priority|P0|as soon as possible)\b`,
)

// KeywordClassifier is the deterministic fallback strategy. It is total:
// it never returns an error, unmatched text routes to Technical and the
// urgency score is binary (0 or 1).
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

func (k *KeywordClassifier) Classify(_ context.Context, text string) (model.Category, float64, error) {
	if strings.TrimSpace(text) == "" {
		return model.CategoryTechnical, 0, nil
	}
	category := model.CategoryTechnical
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			category = rule.category
			break
		}
	}
	var score float64
	if urgencyPattern.MatchString(text) {
		score = 1
	}
	return category, score, nil
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
