package stages

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// GenerationRules maps topical keywords to the candidate ideas they trigger.
type GenerationRules struct {
	Ideas map[string][]string `mapstructure:"ideas"`
}

// Buckets holds the high/medium/low keyword buckets for one reflection
// criterion, worth 3/2/1 points per matching token.
type Buckets struct {
	High   []string `mapstructure:"high"`
	Medium []string `mapstructure:"medium"`
	Low    []string `mapstructure:"low"`
}

// ReflectionRules holds the keyword buckets for the four criteria.
type ReflectionRules struct {
	Feasibility Buckets `mapstructure:"feasibility"`
	Impact      Buckets `mapstructure:"impact"`
	Cost        Buckets `mapstructure:"cost"`
	Timeline    Buckets `mapstructure:"timeline"`
}

// VariationRule appends a fixed set of more-specific phrasings when its
// trigger appears in an idea's text.
type VariationRule struct {
	Trigger    string   `mapstructure:"trigger"`
	Variations []string `mapstructure:"variations"`
}

// EvolutionRules holds the variation rules and the keyword sets used to
// score variations (technology and sustainability worth 2, urban worth 1).
type EvolutionRules struct {
	Variations     []VariationRule `mapstructure:"variations"`
	Technology     []string        `mapstructure:"technology"`
	Sustainability []string        `mapstructure:"sustainability"`
	Urban          []string        `mapstructure:"urban"`
}

// Rules bundles the keyword tables for the rule-driven stages.
type Rules struct {
	Generation GenerationRules `mapstructure:"generation"`
	Reflection ReflectionRules `mapstructure:"reflection"`
	Evolution  EvolutionRules  `mapstructure:"evolution"`
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		Generation: GenerationRules{
			Ideas: map[string][]string{
				"energy":      {"solar panels", "wind turbines", "hydroelectric power", "geothermal energy"},
				"urban":       {"vertical gardens", "green roofs", "smart city infrastructure", "public transportation"},
				"renewable":   {"solar power", "wind energy", "biomass", "tidal power"},
				"sustainable": {"recycling programs", "composting", "energy-efficient buildings", "water conservation"},
				"technology":  {"smart grids", "energy storage systems", "AI-powered optimization", "IoT monitoring"},
			},
		},
		Reflection: ReflectionRules{
			Feasibility: Buckets{
				High:   []string{"solar", "wind", "recycling", "composting"},
				Medium: []string{"smart grid", "storage", "monitoring"},
				Low:    []string{"nuclear", "fusion", "quantum"},
			},
			Impact: Buckets{
				High:   []string{"renewable", "sustainable", "efficient", "smart"},
				Medium: []string{"monitoring", "optimization", "recycling"},
				Low:    []string{"small-scale", "pilot", "test"},
			},
			Cost: Buckets{
				High:   []string{"smart grid", "infrastructure", "system"},
				Medium: []string{"panels", "turbines", "storage"},
				Low:    []string{"composting", "recycling", "monitoring"},
			},
			Timeline: Buckets{
				High:   []string{"monitoring", "optimization", "recycling"},
				Medium: []string{"panels", "turbines", "storage"},
				Low:    []string{"infrastructure", "grid", "system"},
			},
		},
		Evolution: EvolutionRules{
			Variations: []VariationRule{
				{Trigger: "solar", Variations: []string{"solar window panels", "solar roof tiles", "solar-powered street lights"}},
				{Trigger: "wind", Variations: []string{"vertical axis wind turbines", "urban wind turbines", "wind-powered street lights"}},
				{Trigger: "recycling", Variations: []string{"smart recycling bins", "automated recycling centers", "recycling reward programs"}},
				{Trigger: "energy", Variations: []string{"energy storage systems", "energy monitoring systems", "energy optimization platforms"}},
				{Trigger: "sustainable", Variations: []string{"sustainable urban farming", "sustainable transportation", "sustainable building materials"}},
			},
			Technology:     []string{"smart", "automated", "optimized", "efficient", "monitoring"},
			Sustainability: []string{"sustainable", "renewable", "green", "eco-friendly"},
			Urban:          []string{"urban", "city", "street", "building", "roof"},
		},
	}
}

// RulesFromConfig returns the default rules with any overrides from the
// loosely typed config map decoded on top. Map-valued tables merge key by
// key; list-valued tables are replaced.
func RulesFromConfig(overrides map[string]any) (Rules, error) {
	rules := DefaultRules()
	if len(overrides) == 0 {
		return rules, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &rules,
		ErrorUnused: true,
	})
	if err != nil {
		return rules, err
	}
	if err := decoder.Decode(overrides); err != nil {
		return rules, fmt.Errorf("decode rules overrides: %w", err)
	}
	return rules, nil
}
