package topics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/agronova/internal/app/topics"
	"github.com/PabloGalante/agronova/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	reg, err := topics.Default()
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 5)

	wantOrder := []domain.TopicID{
		"crop-recommendation",
		"pest-disease",
		"weather-alerts",
		"soil-fertilizer",
		"sustainable-farming",
	}
	for i, tp := range all {
		assert.Equal(t, wantOrder[i], tp.ID)
		assert.NotEmpty(t, tp.Label)
		assert.Len(t, tp.SamplePrompts, 4)
		assert.Contains(t, tp.Instruction, "\n\nFocus on: ")
	}

	assert.Len(t, reg.SamplePrompts(), 20)
}

func TestLookup(t *testing.T) {
	reg, err := topics.Default()
	require.NoError(t, err)

	tp, ok := reg.Lookup("pest-disease")
	require.True(t, ok)
	assert.Equal(t, "Pest & Disease Management", tp.Label)
	assert.Equal(t,
		"\n\nFocus on: Identifying pests and diseases from descriptions, providing both organic and chemical "+
			"treatment options, preventive measures, and application guidelines.",
		tp.Instruction)

	for _, id := range []domain.TopicID{"", "unknown", "Pest-Disease"} {
		tp, ok := reg.Lookup(id)
		assert.False(t, ok, "id %q", id)
		assert.Equal(t, domain.Topic{}, tp)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg, err := topics.Default()
	require.NoError(t, err)

	tp, _ := reg.Lookup("weather-alerts")
	tp.SamplePrompts[0] = "mutated"

	again, _ := reg.Lookup("weather-alerts")
	assert.NotEqual(t, "mutated", again.SamplePrompts[0])
}

func TestNilRegistryLookup(t *testing.T) {
	var reg *topics.Registry
	_, ok := reg.Lookup("pest-disease")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", "topics:\n  - label: x\n"},
		{"duplicate id", "topics:\n  - id: a\n  - id: a\n"},
		{"invalid yaml", "topics: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := topics.Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseWithoutFocus(t *testing.T) {
	reg, err := topics.Parse([]byte("topics:\n  - id: plain\n    label: Plain\n"))
	require.NoError(t, err)

	tp, ok := reg.Lookup("plain")
	require.True(t, ok)
	assert.Empty(t, tp.Instruction)
}
