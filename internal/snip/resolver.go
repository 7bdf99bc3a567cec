package snip

import (
	"sort"
	"strings"
)

// Resolve finds the single member of namespace whose string form starts with
// fragment (case-sensitive). Exactly one match returns it; zero matches
// returns NotFoundError; two or more return AmbiguousError carrying every
// candidate. The empty fragment matches everything, so it resolves only when
// the namespace has exactly one member.
//
// The same algorithm serves both identifier kinds; the type parameter keeps
// document and attachment namespaces from mixing.
func Resolve[T ~string](fragment string, namespace []T) (T, error) {
	var matches []T
	for _, id := range namespace {
		if strings.HasPrefix(string(id), fragment) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		var zero T
		return zero, &NotFoundError{Fragment: fragment}
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = string(m)
		}
		sort.Strings(candidates)
		var zero T
		return zero, &AmbiguousError{Fragment: fragment, Candidates: candidates}
	}
}
