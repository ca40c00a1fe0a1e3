package team

// UnknownName is reported when a player's club cannot be resolved.
const UnknownName = "Unknown"

// Team is one Premier League club from the season reference data.
type Team struct {
	Code      int     `csv:"code" json:"code"`
	ID        int     `csv:"id" json:"id"`
	Name      string  `csv:"name" json:"name"`
	ShortName string  `csv:"short_name" json:"short_name"`
	Elo       float64 `csv:"elo" json:"elo"`
}

// Index resolves clubs by their stable FPL team code.
type Index map[int]Team

// NewIndex builds an index keyed by team code.
func NewIndex(teams []Team) Index {
	idx := make(Index, len(teams))
	for _, t := range teams {
		idx[t.Code] = t
	}
	return idx
}

// ShortNameFor returns the club's short name, or "Unknown" when the code
// is missing from the reference data or the short name is blank.
func (idx Index) ShortNameFor(code int) string {
	t, ok := idx[code]
	if !ok || t.ShortName == "" {
		return UnknownName
	}
	return t.ShortName
}

// Lookup returns the club for a code.
func (idx Index) Lookup(code int) (Team, bool) {
	t, ok := idx[code]
	return t, ok
}
