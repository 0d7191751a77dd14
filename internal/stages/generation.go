package stages

import (
	"context"

	"github.com/ideamill/ideamill/internal/lexical"
	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

// Generation expands a topic into candidate idea strings via keyword
// association. A topic with no known keywords yields an empty list, not an
// error.
type Generation struct {
	recorder
	rules GenerationRules
}

// NewGeneration creates the generation stage.
func NewGeneration(st store.Store, rules GenerationRules) *Generation {
	return &Generation{recorder{models.StageGeneration, st}, rules}
}

// Process tokenizes the topic and collects the candidate ideas associated
// with each matching keyword, deduplicated in first-seen order.
func (g *Generation) Process(ctx context.Context, runID int64, topic string) ([]string, error) {
	ideas := []string{}
	seen := make(map[string]struct{})

	for _, tok := range lexical.Tokenize(topic) {
		for _, idea := range g.rules.Ideas[tok] {
			if _, ok := seen[idea]; ok {
				continue
			}
			seen[idea] = struct{}{}
			ideas = append(ideas, idea)
		}
	}

	if err := g.record(ctx, runID, "generate", ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}
