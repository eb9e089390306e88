package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

func TestIntent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		intent  Intent
		wantErr bool
	}{
		{"expand", Expand(2), false},
		{"expand with recipe", Intent{Op: OpExpand, Node: 2, Recipe: "make-a"}, false},
		{"collapse", Collapse(2), false},
		{"merge", Merge(2, 3), false},
		{"unknown op", Intent{Op: "split", Node: 2}, true},
		{"no node", Intent{Op: OpExpand}, true},
		{"merge without with", Intent{Op: OpMerge, Node: 2}, true},
		{"with on collapse", Intent{Op: OpCollapse, Node: 2, With: 3}, true},
		{"recipe on merge", Intent{Op: OpMerge, Node: 2, With: 3, Recipe: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "Validate() = %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "expand 2", Expand(2).String())
	assert.Equal(t, "merge 4 with 7", Merge(4, 7).String())
	assert.Equal(t, "expand 2 using e-slow", Intent{Op: OpExpand, Node: 2, Recipe: "e-slow"}.String())
}

func TestLoadScript(t *testing.T) {
	intents, err := LoadScript("testdata/plan.toml")
	require.NoError(t, err)
	assert.Equal(t, []Intent{Expand(2), Expand(5)}, intents)

	intents, err = LoadScript("testdata/plan.yaml")
	require.NoError(t, err)
	assert.Equal(t, []Intent{Expand(2), Collapse(2), Merge(4, 3)}, intents)
}

func TestLoadScript_Errors(t *testing.T) {
	_, err := LoadScript("testdata/missing.toml")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = LoadScript("testdata/plan.json")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = ParseScript([]byte("[[edit]]\nop = \"expand\"\nnode = 2\ncolor = \"red\"\n"), recipe.FormatTOML)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = ParseScript([]byte("edits:\n  - op: explode\n    node: 2\n"), recipe.FormatYAML)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "edit 1")

	intents, err := ParseScript(nil, recipe.FormatYAML)
	assert.NoError(t, err)
	assert.Empty(t, intents)
}
