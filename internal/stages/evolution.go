package stages

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ideamill/ideamill/internal/lexical"
	"github.com/ideamill/ideamill/internal/models"
	"github.com/ideamill/ideamill/internal/store"
)

// Variation scoring weights: technology and sustainability keywords count
// double the urban-context keywords.
const (
	variationTechPoints    = 2
	variationSustainPoints = 2
	variationUrbanPoints   = 1
)

// Evolution mutates each ranked idea into variants and keeps the
// best-scoring one. An idea that triggers no variation rule passes through
// unchanged with zero improvement.
type Evolution struct {
	recorder
	rules EvolutionRules
}

// NewEvolution creates the evolution stage.
func NewEvolution(st store.Store, rules EvolutionRules) *Evolution {
	return &Evolution{recorder{models.StageEvolution, st}, rules}
}

// Process evolves every ranked idea concurrently and joins the results in
// input order.
func (e *Evolution) Process(ctx context.Context, runID int64, rankings []models.Ranking) ([]models.Evolution, error) {
	evolved := make([]models.Evolution, len(rankings))

	var g errgroup.Group
	for i, ranked := range rankings {
		g.Go(func() error {
			evolved[i] = e.evolve(ranked)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.record(ctx, runID, "evolve", evolved); err != nil {
		return nil, err
	}
	return evolved, nil
}

func (e *Evolution) evolve(ranked models.Ranking) models.Evolution {
	variations := e.variations(ranked.Idea)
	if len(variations) == 0 {
		// No variations to choose from: the idea passes through unchanged.
		return models.Evolution{
			OriginalIdea:  ranked.Idea,
			OriginalScore: ranked.FinalScore,
			EvolvedIdea:   ranked.Idea,
			EvolvedScore:  ranked.FinalScore,
			Improvement:   0,
		}
	}

	bestIdea := variations[0]
	bestScore := e.scoreVariation(variations[0])
	for _, v := range variations[1:] {
		// Strictly greater, so ties keep the first-seen variation.
		if score := e.scoreVariation(v); score > bestScore {
			bestIdea, bestScore = v, score
		}
	}

	return models.Evolution{
		OriginalIdea:  ranked.Idea,
		OriginalScore: ranked.FinalScore,
		EvolvedIdea:   bestIdea,
		EvolvedScore:  bestScore,
		Improvement:   bestScore - ranked.FinalScore,
	}
}

// variations collects the phrasings of every rule whose trigger appears in
// the idea text, in rule order.
func (e *Evolution) variations(idea string) []string {
	lower := strings.ToLower(idea)

	var variations []string
	for _, rule := range e.rules.Variations {
		if strings.Contains(lower, rule.Trigger) {
			variations = append(variations, rule.Variations...)
		}
	}
	return variations
}

func (e *Evolution) scoreVariation(variation string) int {
	score := 0
	for _, tok := range lexical.Tokenize(variation) {
		if containsToken(e.rules.Technology, tok) {
			score += variationTechPoints
		}
		if containsToken(e.rules.Sustainability, tok) {
			score += variationSustainPoints
		}
		if containsToken(e.rules.Urban, tok) {
			score += variationUrbanPoints
		}
	}
	return clampScore(score)
}
