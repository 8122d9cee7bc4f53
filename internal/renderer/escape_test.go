package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; &quot;Jerry&quot;&lt;/b&gt;", EscapeHTML(`<b>Tom & "Jerry"</b>`))
	assert.Equal(t, "it's", EscapeHTML("it's"))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
	assert.Equal(t, "", EscapeHTML(""))
}

func TestMergeProps(t *testing.T) {
	defaults := map[string]string{"text": "Click", "color": "blue"}
	overrides := map[string]string{"text": "Go", "size": "lg"}

	merged := MergeProps(defaults, overrides)

	assert.Equal(t, map[string]string{"text": "Go", "color": "blue", "size": "lg"}, merged)
	assert.Equal(t, "Click", defaults["text"])
	assert.NotContains(t, defaults, "size")

	assert.Empty(t, MergeProps(nil, nil))
	assert.Equal(t, defaults, MergeProps(defaults, nil))
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		props    map[string]string
		want     string
	}{
		{"simple", "<p>{{text}}</p>", map[string]string{"text": "hi"}, "<p>hi</p>"},
		{"inner whitespace", "{{ text }}|{{\ttext\n}}", map[string]string{"text": "x"}, "x|x"},
		{"repeated", "{{a}}{{a}}", map[string]string{"a": "1"}, "11"},
		{"unknown key", "<p>{{missing}}</p>", map[string]string{}, "<p></p>"},
		{"escaped value", "{{v}}", map[string]string{"v": `<i>"x"</i>`}, "&lt;i&gt;&quot;x&quot;&lt;/i&gt;"},
		{"hyphenated key", "{{data-id}}", map[string]string{"data-id": "7"}, "7"},
		{"value containing a placeholder", "{{a}}", map[string]string{"a": "{{b}}", "b": "no"}, ""},
		{"placeholder rebuilt by removal", "{{a{{x}}}}", map[string]string{"a": "no"}, ""},
		{"single braces untouched", "{a} {{ }} {{a b}}", map[string]string{"a": "x"}, "{a} {{ }} {{a b}}"},
		{"no placeholders", "<hr>", nil, "<hr>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.template, tt.props)
			assert.Equal(t, tt.want, got)
			assert.NotRegexp(t, `\{\{\s*[\w-]+\s*\}\}`, got)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"color", "text"}, Placeholders(`<b style="color: {{ color }}">{{text}}</b>{{text}}`))
	assert.Equal(t, []string{"data-id"}, Placeholders(`<i>{{data-id}}</i>`))
	assert.Empty(t, Placeholders("<b>static</b> { {x} }"))
}
