// Package plan builds minimal per-check update payloads from requested
// field changes.
package plan

import (
	"github.com/hctools/hc-bulk/internal/models"
)

// FieldChanges is the full set of edits requested for a run. Nil fields
// mean "leave unchanged". SetTags, AddTags, and RemoveTags feed the tag
// reconciler rather than the payload directly.
type FieldChanges struct {
	Name         *string
	Desc         *string
	SetTags      *string
	AddTags      *string
	RemoveTags   *string
	Timeout      *int
	Grace        *int
	Schedule     *string
	TZ           *string
	Methods      *string
	Channels     *string
	ManualResume *bool
}

// Item is one planned action: an optional sparse update plus a pause flag
// for a single check. A nil Update with Pause false is a no-op item.
type Item struct {
	Check  models.Check
	Update *models.CheckUpdate
	Pause  bool
}

// Plan is the ordered list of per-check actions for a run, computed in
// full before any mutation is issued.
type Plan []Item

// BuildUpdate produces the minimal update payload for one check, or nil
// when no field would change. Field values pass through from the request
// untouched; only tags are derived from the check's current state, via
// ComputeTags.
func BuildUpdate(check models.Check, changes FieldChanges) *models.CheckUpdate {
	upd := models.CheckUpdate{
		Name:         changes.Name,
		Desc:         changes.Desc,
		Tags:         ComputeTags(check.Tags, changes.SetTags, changes.AddTags, changes.RemoveTags),
		Timeout:      changes.Timeout,
		Grace:        changes.Grace,
		Schedule:     changes.Schedule,
		TZ:           changes.TZ,
		Methods:      changes.Methods,
		Channels:     changes.Channels,
		ManualResume: changes.ManualResume,
	}
	if upd.IsEmpty() {
		return nil
	}
	return &upd
}

// Build assembles the plan for the selected checks, in input order.
func Build(checks []models.Check, changes FieldChanges, pause bool) Plan {
	items := make(Plan, 0, len(checks))
	for _, c := range checks {
		items = append(items, Item{
			Check:  c,
			Update: BuildUpdate(c, changes),
			Pause:  pause,
		})
	}
	return items
}

// UpdateCount returns how many items carry an update payload.
func (p Plan) UpdateCount() int {
	n := 0
	for _, item := range p {
		if item.Update != nil {
			n++
		}
	}
	return n
}

// PauseCount returns how many items request a pause.
func (p Plan) PauseCount() int {
	n := 0
	for _, item := range p {
		if item.Pause {
			n++
		}
	}
	return n
}
