package models

// Activity is one entry of the activity log.
type Activity struct {
	Record
	Action   Action `json:"action"`
	Kind     string `json:"kind"`
	EntityID string `json:"entityId,omitempty"`
	Title    string `json:"title,omitempty"`
	Actor    string `json:"actor,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Clone returns a deep copy.
func (a *Activity) Clone() *Activity {
	c := *a
	return &c
}

// Facets returns the values board views filter on.
func (a *Activity) Facets() Facets {
	return Facets{
		Text:     []string{a.Title, a.Details, a.Kind},
		Assignee: a.Actor,
		Category: a.Kind,
		Action:   string(a.Action),
		Time:     a.CreatedAt,
	}
}
