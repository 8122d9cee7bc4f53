package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialsError_Format(t *testing.T) {
	err := NewIOError(ErrCodeReadFailed, "could not read", errors.New("permission denied")).
		WithComponent("card").
		WithPath("_components/card.md")

	assert.Equal(t, "[ERR_READ_FAILED] component:card _components/card.md could not read: permission denied", err.Error())
	assert.Equal(t, "permission denied", errors.Unwrap(err).Error())
}

func TestPartialsError_Is(t *testing.T) {
	err := fmt.Errorf("loading: %w", ErrPathTraversal("../x"))

	assert.True(t, errors.Is(err, NewValidationError(ErrCodePathTraversal, "")))
	assert.False(t, errors.Is(err, NewConfigError(ErrCodePathTraversal, "")))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("init: %w", NewValidationError(ErrCodeComponentExists, "exists"))

	assert.True(t, IsCode(err, ErrCodeComponentExists))
	assert.False(t, IsCode(err, ErrCodeInvalidName))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeComponentExists))
	assert.False(t, IsCode(nil, ErrCodeComponentExists))
}

func TestScriptError(t *testing.T) {
	cause := errors.New("ReferenceError: nope is not defined")
	err := fmt.Errorf("render: %w", NewScriptError("button", "_components/button.md", cause))

	assert.True(t, IsScriptError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "component:button")
	assert.False(t, IsScriptError(cause))
}

func TestErrorCollector(t *testing.T) {
	ec := NewErrorCollector()
	assert.False(t, ec.HasErrors())
	assert.NoError(t, ec.Join())

	ec.Add("a.md", nil)
	ec.AddError(nil)
	assert.Equal(t, 0, ec.Len())

	cause := errors.New("boom")
	ec.Add("a.md", cause)
	ec.AddError(errors.New("other"))

	require.Equal(t, 2, ec.Len())
	joined := ec.Join()
	assert.ErrorIs(t, joined, cause)
	assert.Contains(t, joined.Error(), "a.md: boom")

	var fe *FileError
	require.ErrorAs(t, ec.GetErrors()[0], &fe)
	assert.Equal(t, "a.md", fe.Path)

	ec.Clear()
	assert.False(t, ec.HasErrors())
}

func TestErrorCollector_Concurrent(t *testing.T) {
	ec := NewErrorCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ec.Add(fmt.Sprintf("%d.md", i), errors.New("fail"))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, ec.Len())
}

func TestLookupError_WithAvailable(t *testing.T) {
	err := NewLookupError("buton", []string{"card", "button", "badge"}, "_components")

	assert.Equal(t, []string{"badge", "button", "card"}, err.Available)
	require.NotEmpty(t, err.Suggestions)
	assert.Equal(t, "button", err.Suggestions[0])
	assert.Equal(t, `component "buton" not found. Did you mean "button"? Available components: badge, button, card`, err.Error())
	assert.True(t, IsLookupError(fmt.Errorf("wrap: %w", err)))
}

func TestLookupError_EmptyRegistry(t *testing.T) {
	err := NewLookupError("button", nil, "_components")
	assert.Equal(t, `component "button" not found. Create component definitions in the "_components" folder first.`, err.Error())

	err = NewLookupError("button", nil, "")
	assert.Contains(t, err.Error(), `"components" folder`)
}

func TestLookupError_NoSuggestion(t *testing.T) {
	err := NewLookupError("zzzzzz", []string{"card"}, "")
	assert.Empty(t, err.Suggestions)
	assert.Equal(t, `component "zzzzzz" not found. Available components: card`, err.Error())
}

func TestSuggest(t *testing.T) {
	candidates := []string{"button", "Badge", "card", "progress-bar", "alert"}

	tests := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{"typo", "buton", 3, []string{"button"}},
		{"case folded", "BADGE", 3, []string{"Badge"}},
		{"substring", "progress", 3, []string{"progress-bar"}},
		{"ties break by name", "a", 2, []string{"Badge", "alert"}},
		{"nothing close", "zzzzzzzz", 3, []string{}},
		{"empty name", "", 3, nil},
		{"zero max", "card", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.in, candidates, tt.max)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("card", "card"))
	assert.Equal(t, 1, levenshtein("card", "cart"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("héllo", "hello"))
}
