package eval

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rubiojr/scriptgo/object"
)

// nameError builds a NameError for name, suggesting the closest visible
// name when one is near enough to be a plausible typo.
func nameError(name string, candidates []string) error {
	msg := "name '" + name + "' is not defined"
	if s := suggest(name, candidates); s != "" {
		msg += ". Did you mean: '" + s + "'?"
	}
	return object.Errorf(object.NameErrorKind, "%s", msg)
}

func suggest(name string, candidates []string) string {
	visible := candidates[:0:0]
	for _, c := range candidates {
		if !strings.HasPrefix(c, "__") {
			visible = append(visible, c)
		}
	}
	sort.Strings(visible)

	best, bestDist := "", -1
	limit := max(1, (len(name)+1)/3)
	for _, c := range visible {
		d := fuzzy.LevenshteinDistance(name, c)
		if d <= limit && (bestDist < 0 || d < bestDist) {
			best, bestDist = c, d
		}
	}
	if best != "" {
		return best
	}
	// fall back to subsequence matches such as "prt" -> "print"
	ranks := fuzzy.RankFindFold(name, visible)
	if len(ranks) == 0 || len(name) < 3 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
