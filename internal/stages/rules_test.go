package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesFromConfigEmptyKeepsDefaults(t *testing.T) {
	rules, err := RulesFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestRulesFromConfigOverridesGeneration(t *testing.T) {
	rules, err := RulesFromConfig(map[string]any{
		"generation": map[string]any{
			"ideas": map[string]any{
				"ocean": []any{"wave power", "tidal fences"},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"wave power", "tidal fences"}, rules.Generation.Ideas["ocean"])
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultRules().Reflection, rules.Reflection)
	assert.Equal(t, DefaultRules().Evolution, rules.Evolution)
}

func TestRulesFromConfigRejectsUnknownKeys(t *testing.T) {
	_, err := RulesFromConfig(map[string]any{"generatoin": map[string]any{}})
	require.Error(t, err)
}
