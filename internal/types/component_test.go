package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"button", true},
		{"_private", true},
		{"my-card", true},
		{"Card2", true},
		{"2card", false},
		{"-card", false},
		{"my card", false},
		{"", false},
		{"card!", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIdentifier(tt.input))
		})
	}
}

func TestProps_SetKeepsFirstPosition(t *testing.T) {
	props := NewProps()
	props.Set("text", "Click")
	props.Set("color", "red")
	props.Set("text", "Again")

	assert.Equal(t, []string{"text", "color"}, props.Keys)
	assert.Equal(t, "Again", props.Values["text"])
	assert.Equal(t, 2, props.Len())

	v, ok := props.Get("color")
	assert.True(t, ok)
	assert.Equal(t, "red", v)
}

func TestProps_ZeroValueSet(t *testing.T) {
	var props Props
	props.Set("a", "1")
	assert.Equal(t, "1", props.Values["a"])
}

func TestProps_MapIsCopy(t *testing.T) {
	props := NewProps()
	props.Set("a", "1")

	m := props.Map()
	m["a"] = "changed"

	assert.Equal(t, "1", props.Values["a"])
}

func TestProps_MarshalJSONKeepsOrder(t *testing.T) {
	props := NewProps()
	props.Set("zeta", "1")
	props.Set("alpha", `say "hi"`)

	data, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"say \"hi\""}`, string(data))
}

func TestProps_MarshalYAMLKeepsOrder(t *testing.T) {
	props := NewProps()
	props.Set("zeta", "one")
	props.Set("alpha", "two")

	data, err := yaml.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t, "zeta: one\nalpha: two\n", string(data))
}

func TestDisplayMode_Valid(t *testing.T) {
	assert.True(t, DisplayInline.Valid())
	assert.True(t, DisplayBlock.Valid())
	assert.False(t, DisplayMode("grid").Valid())
	assert.False(t, DisplayMode("").Valid())
}

func TestDefaultRenderOptions(t *testing.T) {
	opts := DefaultRenderOptions()
	assert.True(t, opts.EnableScripts)
	assert.Equal(t, DisplayInline, opts.DisplayMode)
}
