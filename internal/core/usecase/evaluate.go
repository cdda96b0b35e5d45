package usecase

import (
	"sort"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

// Evaluator compares detected labels against the configured category
// rule-sets. Evaluation is a pure function of the label set; category order
// never affects the outcome.
type Evaluator struct {
	rules domain.RuleSets
}

func NewEvaluator(rules domain.RuleSets) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate returns one match decision per configured category, ordered by
// category name. A label counts for a category only when its best reported
// confidence meets the rule's threshold.
func (e *Evaluator) Evaluate(result domain.ClassificationResult) []domain.CategoryMatch {
	best := result.BestConfidence()

	matches := make([]domain.CategoryMatch, 0, len(e.rules))
	for category, ruleSet := range e.rules {
		m := domain.CategoryMatch{Category: category}
		for name, threshold := range ruleSet {
			if confidence, ok := best[name]; ok && confidence >= threshold {
				m.Matched = true
				m.Labels = append(m.Labels, name)
			}
		}
		sort.Strings(m.Labels)
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Category < matches[j].Category })
	return matches
}

// FirstMatch reduces the per-category decisions to a single escalation
// target: the first matched category in name order, if any.
func (e *Evaluator) FirstMatch(result domain.ClassificationResult) (string, bool) {
	for _, m := range e.Evaluate(result) {
		if m.Matched {
			return m.Category, true
		}
	}
	return "", false
}
