// Package filter selects checks by name, slug, and status criteria.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hctools/hc-bulk/internal/models"
)

// Criteria holds the optional client-side selection dimensions. A nil
// pattern or empty status set matches every check on that dimension; the
// dimensions are ANDed. Tag narrowing happens server-side in the list
// request and is not re-checked here.
type Criteria struct {
	Name     *regexp.Regexp
	Slug     *regexp.Regexp
	Statuses map[string]bool
}

// ParseCriteria compiles user-supplied regex text and status values into
// Criteria. Empty inputs leave the corresponding dimension unset.
func ParseCriteria(nameRe, slugRe string, statuses []string) (Criteria, error) {
	var crit Criteria

	if nameRe != "" {
		rx, err := regexp.Compile(nameRe)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid name regex %q: %w", nameRe, err)
		}
		crit.Name = rx
	}
	if slugRe != "" {
		rx, err := regexp.Compile(slugRe)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid slug regex %q: %w", slugRe, err)
		}
		crit.Slug = rx
	}
	if len(statuses) > 0 {
		known := make(map[string]bool, len(models.ValidStatuses))
		for _, s := range models.ValidStatuses {
			known[s] = true
		}
		crit.Statuses = make(map[string]bool, len(statuses))
		for _, s := range statuses {
			folded := strings.ToLower(s)
			if !known[folded] {
				return Criteria{}, fmt.Errorf("unknown status %q (valid: %s)", s, strings.Join(models.ValidStatuses, ", "))
			}
			crit.Statuses[folded] = true
		}
	}

	return crit, nil
}

// Select returns the checks matching every set criterion, preserving
// input order.
func Select(checks []models.Check, crit Criteria) []models.Check {
	selected := make([]models.Check, 0, len(checks))
	for _, c := range checks {
		if !matchPattern(c.Name, crit.Name) {
			continue
		}
		if !matchPattern(c.Slug, crit.Slug) {
			continue
		}
		if !matchStatus(c.Status, crit.Statuses) {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

// matchPattern searches anywhere in the value. A check without a value
// never matches a set pattern.
func matchPattern(value string, pattern *regexp.Regexp) bool {
	if pattern == nil {
		return true
	}
	return value != "" && pattern.MatchString(value)
}

func matchStatus(value string, statuses map[string]bool) bool {
	if len(statuses) == 0 {
		return true
	}
	return statuses[strings.ToLower(value)]
}
