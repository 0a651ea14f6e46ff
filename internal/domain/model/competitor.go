// Package model contains domain models passed between layers.
package model

// Competitor is one entry of a championship roster. Identity is by Name.
type Competitor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Roster is an ordered list of competitors with their current totals.
type Roster []Competitor

// Clone returns an independent copy of the roster.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// Names returns competitor names in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// MaxPoints returns the highest point total in the roster, or 0 if empty.
func (r Roster) MaxPoints() int {
	if len(r) == 0 {
		return 0
	}
	best := r[0].Points
	for _, c := range r[1:] {
		if c.Points > best {
			best = c.Points
		}
	}
	return best
}

// Points returns the total for name and whether it is present.
func (r Roster) Points(name string) (int, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Points, true
		}
	}
	return 0, false
}
