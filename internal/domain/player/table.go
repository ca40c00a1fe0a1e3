package player

import (
	"sort"
	"strings"
)

// Table is an ordered collection of player rows with the query operations
// the analysis views are built from. Operations return new slices and never
// mutate the receiver, so a shared snapshot can serve concurrent readers.
type Table []Player

// Filter keeps rows for which keep returns true.
func (t Table) Filter(keep func(Player) bool) Table {
	out := make(Table, 0, len(t))
	for _, p := range t {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ByPosition keeps rows of a single position.
func (t Table) ByPosition(pos Position) Table {
	return t.Filter(func(p Player) bool { return p.Position == pos })
}

// Search keeps rows whose web name contains the query, case-insensitive.
func (t Table) Search(query string) Table {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Table{}
	}
	return t.Filter(func(p Player) bool {
		return strings.Contains(strings.ToLower(p.WebName), q)
	})
}

// SortBy returns a copy ordered by a numeric column. Rows missing the
// column keep their relative order at the end; the sort is stable so equal
// values preserve input order.
func (t Table) SortBy(field string, ascending bool) Table {
	out := make(Table, len(t))
	copy(out, t)

	sort.SliceStable(out, func(i, j int) bool {
		vi, oki := out[i].Numeric(field)
		vj, okj := out[j].Numeric(field)
		if !oki || !okj {
			return oki && !okj
		}
		if ascending {
			return vi < vj
		}
		return vi > vj
	})

	return out
}

// Top returns at most n leading rows.
func (t Table) Top(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t) {
		n = len(t)
	}
	out := make(Table, n)
	copy(out, t[:n])
	return out
}

// MaxNumeric returns the column maximum, or 0 when no row has the column.
func (t Table) MaxNumeric(field string) float64 {
	max := 0.0
	found := false
	for _, p := range t {
		v, ok := p.Numeric(field)
		if !ok {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return max
}

// FindByID returns the row with the given player id.
func (t Table) FindByID(id int) (Player, bool) {
	for _, p := range t {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
