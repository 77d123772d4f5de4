package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hctools/hc-bulk/internal/filter"
)

// selectionFlags are the check-selection criteria shared by ls and
// bulk-update.
type selectionFlags struct {
	tags     []string
	nameRe   string
	slugRe   string
	statuses []string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&s.tags, "tags", "t", nil, "filter by tag, repeatable (tags are ANDed server-side)")
	flags.StringVar(&s.nameRe, "name-re", "", "regex filter on check name")
	flags.StringVar(&s.slugRe, "slug-re", "", "regex filter on check slug")
	flags.StringArrayVar(&s.statuses, "status", nil, "filter by status (new, up, down, grace, paused), repeatable")
}

// criteria compiles the flag values, rejecting malformed patterns and
// unknown statuses before any remote call is made.
func (s *selectionFlags) criteria() (filter.Criteria, error) {
	return filter.ParseCriteria(s.nameRe, s.slugRe, s.statuses)
}

// tagFilter returns the server-side tag narrowing, nil when unset.
func (s *selectionFlags) tagFilter() []string {
	cleaned := make([]string, 0, len(s.tags))
	for _, tag := range s.tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
