package plan

import (
	"sort"
	"strings"
)

// ComputeTags reconciles a check's current tag string with the requested
// operations and returns the new value, or nil when nothing would change.
//
// A non-nil set value wins outright, even when empty, silences add and
// remove, and always counts as a change. Otherwise the current string is
// treated as a token set, add
// tokens are unioned in, remove tokens subtracted, and the result rendered
// sorted and space-joined.
//
// Change detection compares the rendered, sorted result against the raw
// current string. A check whose stored tags were unsorted can therefore
// report a change on a logically no-op add; that matches the remote
// service's own normalisation on write.
func ComputeTags(current string, set, add, remove *string) *string {
	if set != nil {
		trimmed := strings.TrimSpace(*set)
		return &trimmed
	}

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(current) {
		tokens[tok] = true
	}
	if add != nil {
		for _, tok := range strings.Fields(*add) {
			tokens[tok] = true
		}
	}
	if remove != nil {
		for _, tok := range strings.Fields(*remove) {
			delete(tokens, tok)
		}
	}

	rendered := renderTags(tokens)
	if rendered == current {
		return nil
	}
	return &rendered
}

func renderTags(tokens map[string]bool) string {
	sorted := make([]string, 0, len(tokens))
	for tok := range tokens {
		sorted = append(sorted, tok)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
