package domain

import "time"

// TrackedSearch represents one owner's tracked interest in one ISBN.
// At most one row exists per (owner, ISBN) pair; the store's upsert
// enforces this, not callers.
type TrackedSearch struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	ISBN              string     `json:"isbn"` // normalized, validated
	Title             string     `json:"title"`
	Author            string     `json:"author"`
	CoverURL          string     `json:"cover_url"`
	CatalogURL        string     `json:"catalog_url,omitempty"` // canonical record link; empty when no match was trusted
	Available         bool       `json:"available"`
	ManualUnavailable bool       `json:"manual_unavailable"`
	CreatedAt         time.Time  `json:"created_at"`
	LastChecked       time.Time  `json:"last_checked"`
	NotifiedAt        *time.Time `json:"notified_at,omitempty"` // populated on reads that join the notification ledger
}

// EffectiveAvailability is the value shown to the owner and used to decide
// notification: available AND NOT manually overridden.
func (s *TrackedSearch) EffectiveAvailability() bool {
	return s.Available && !s.ManualUnavailable
}
