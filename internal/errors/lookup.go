package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ErrNoInvocations is reported for a component block that holds no
// parseable invocation.
var ErrNoInvocations = errors.New(`could not parse component invocation. Format: component_name(prop="value")`)

// LookupError reports an invocation naming a component that is not
// registered.
type LookupError struct {
	Name        string
	Available   []string
	Suggestions []string
	Folder      string
}

// NewLookupError builds a LookupError, sorting the available names and
// computing close matches for name.
func NewLookupError(name string, available []string, folder string) *LookupError {
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)
	return &LookupError{
		Name:        name,
		Available:   sorted,
		Suggestions: Suggest(name, sorted, 3),
		Folder:      folder,
	}
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "component %q not found.", e.Name)

	if len(e.Available) == 0 {
		folder := e.Folder
		if folder == "" {
			folder = "components"
		}
		fmt.Fprintf(&b, " Create component definitions in the %q folder first.", folder)
		return b.String()
	}

	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " Did you mean %q?", e.Suggestions[0])
	}
	b.WriteString(" Available components: ")
	b.WriteString(strings.Join(e.Available, ", "))
	return b.String()
}

// IsLookupError reports whether err is a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// Suggest returns up to max candidates close to name, nearest first.
// Comparison is case-folded; a candidate qualifies when one name contains
// the other or the edit distance is small relative to the name's length.
func Suggest(name string, candidates []string, max int) []string {
	if name == "" || max <= 0 {
		return nil
	}

	folder := cases.Fold()
	target := folder.String(name)
	limit := len([]rune(target)) / 3
	if limit < 2 {
		limit = 2
	}

	type scored struct {
		name     string
		distance int
	}
	var matches []scored
	for _, candidate := range candidates {
		folded := folder.String(candidate)
		distance := levenshtein(target, folded)
		if strings.Contains(folded, target) || strings.Contains(target, folded) {
			if distance > limit {
				distance = limit
			}
			matches = append(matches, scored{candidate, distance})
			continue
		}
		if distance <= limit {
			matches = append(matches, scored{candidate, distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > max {
		matches = matches[:max]
	}
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.name)
	}
	return result
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
