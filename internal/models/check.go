package models

// Check statuses as reported by the management API.
const (
	StatusNew    = "new"
	StatusUp     = "up"
	StatusDown   = "down"
	StatusGrace  = "grace"
	StatusPaused = "paused"
)

// ValidStatuses lists every status value the API can report, in the
// order the service documents them.
var ValidStatuses = []string{StatusNew, StatusUp, StatusDown, StatusGrace, StatusPaused}

// Check is a single monitoring check as returned by the management API.
// The tags field is one space-separated string; callers treat it as an
// unordered set of tokens.
type Check struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Desc         string `json:"desc"`
	Status       string `json:"status"`
	Tags         string `json:"tags"`
	Timeout      int    `json:"timeout"`
	Grace        int    `json:"grace"`
	Schedule     string `json:"schedule"`
	TZ           string `json:"tz"`
	Methods      string `json:"methods"`
	Channels     string `json:"channels"`
	ManualResume bool   `json:"manual_resume"`
	NPings       int    `json:"n_pings"`
	LastPing     string `json:"last_ping"`
	PingURL      string `json:"ping_url"`
	UpdateURL    string `json:"update_url"`
	PauseURL     string `json:"pause_url"`
}

// DisplayName returns the check's name, or a placeholder when the check
// has none.
func (c Check) DisplayName() string {
	if c.Name == "" {
		return "(no-name)"
	}
	return c.Name
}

// CheckUpdate is a sparse update payload. A nil field is omitted from the
// serialized request, which the remote service interprets as "leave
// unchanged". Pausing is a separate API call and never part of this
// payload.
type CheckUpdate struct {
	Name         *string `json:"name,omitempty"`
	Desc         *string `json:"desc,omitempty"`
	Tags         *string `json:"tags,omitempty"`
	Timeout      *int    `json:"timeout,omitempty"`
	Grace        *int    `json:"grace,omitempty"`
	Schedule     *string `json:"schedule,omitempty"`
	TZ           *string `json:"tz,omitempty"`
	Methods      *string `json:"methods,omitempty"`
	Channels     *string `json:"channels,omitempty"`
	ManualResume *bool   `json:"manual_resume,omitempty"`
}

// IsEmpty reports whether no field is set, meaning the update would be a
// remote no-op and should be skipped entirely.
func (u CheckUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Desc == nil &&
		u.Tags == nil &&
		u.Timeout == nil &&
		u.Grace == nil &&
		u.Schedule == nil &&
		u.TZ == nil &&
		u.Methods == nil &&
		u.Channels == nil &&
		u.ManualResume == nil
}
