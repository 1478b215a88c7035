package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is a named group of users. Guards compare role names carried in
// credentials, so Name is the identity that matters at request time.
type Role struct {
	ID        string
	Name      string
	UserIDs   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Update lists the mutable fields of a role.
type Update struct {
	Name *string `json:"name"`
}

// Validate requires a non-blank name.
func (u Update) Validate() error {
	if u.Name == nil || strings.TrimSpace(*u.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// MembersUpdate adds and removes members by username. Removal wins when a
// username appears in both lists.
type MembersUpdate struct {
	Added   []string `json:"added_users"`
	Removed []string `json:"deleted_users"`
}

// Apply returns current plus Added minus Removed, deduplicated, in first-seen order.
func (m MembersUpdate) Apply(current []string) []string {
	removed := make(map[string]struct{}, len(m.Removed))
	for _, n := range m.Removed {
		removed[n] = struct{}{}
	}
	seen := make(map[string]struct{}, len(current)+len(m.Added))
	out := make([]string, 0, len(current)+len(m.Added))
	for _, list := range [][]string{current, m.Added} {
		for _, n := range list {
			if _, skip := removed[n]; skip {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
