package shortener

import "time"

// Code is the externally visible key of a mapping: either a base62 rendered
// identifier or a caller supplied alias.
type Code string

// Mapping ties a short code to a normalized long URL. It is created once and
// never mutated.
type Mapping struct {
	Code      Code
	LongURL   string
	CreatedAt time.Time
	Custom    bool
	OwnerID   *string // nil when the mapping has no owner
}

// Owner returns the owner id, or "" when absent.
func (m *Mapping) Owner() string {
	if m.OwnerID == nil {
		return ""
	}

	return *m.OwnerID
}

// OwnerCount is one row of the per owner aggregate.
type OwnerCount struct {
	OwnerID string
	Count   int64
}
