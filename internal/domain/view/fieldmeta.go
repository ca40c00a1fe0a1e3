package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Missing is rendered for values that cannot be formatted.
const Missing = "-"

type fieldMeta struct {
	label  string
	format func(float64) string
}

func pounds(v float64) string    { return fmt.Sprintf("£%.1fm", v) }
func percent1(v float64) string  { return fmt.Sprintf("%.1f%%", v) }
func percent0(v float64) string  { return fmt.Sprintf("%.0f%%", v) }
func decimal2(v float64) string  { return fmt.Sprintf("%.2f", v) }
func decimal1(v float64) string  { return fmt.Sprintf("%.1f", v) }
func wholePct(v float64) string  { return fmt.Sprintf("%d%%", int(v)) }
func grouped(v float64) string   { return groupThousands(int64(v)) }
func plainInt(v float64) string  { return strconv.FormatInt(int64(v), 10) }

var fieldMetas = map[string]fieldMeta{
	"web_name":                      {label: "Player"},
	"team_name":                     {label: "Team"},
	"position":                      {label: "Pos"},
	"news":                          {label: "News"},
	"now_cost":                      {label: "Price", format: pounds},
	"selected_by_percent":           {label: "Selected", format: percent1},
	"total_points":                  {label: "Points", format: grouped},
	"event_points":                  {label: "GW Points", format: plainInt},
	"form":                          {label: "Form", format: decimal1},
	"expected_goals":                {label: "xG", format: decimal2},
	"expected_assists":              {label: "xA", format: decimal2},
	"expected_goal_involvements":    {label: "xGI", format: decimal2},
	"points_per_million":            {label: "Pts/£m", format: decimal2},
	"value_score":                   {label: "Value", format: decimal2},
	"minutes_pct":                   {label: "Minutes", format: percent0},
	"ict_index":                     {label: "ICT", format: decimal1},
	"clean_sheets":                  {label: "CS", format: plainInt},
	"saves_per_90":                  {label: "Saves/90", format: decimal2},
	"save_value_per_million":        {label: "Save Value", format: decimal2},
	"defensive_contribution":        {label: "DefCon", format: decimal1},
	"defensive_contribution_per_90": {label: "DefCon/90", format: decimal2},
	"chance_of_playing_next_round":  {label: "Playing Chance", format: wholePct},
	"my_team_position":              {label: "Slot", format: plainInt},
}

// Label returns the display heading for a column, falling back to the
// column name itself.
func Label(field string) string {
	if m, ok := fieldMetas[field]; ok && m.label != "" {
		return m.label
	}
	return field
}

// FormatNumeric renders a numeric column for display. NaN and infinities
// render as "-".
func FormatNumeric(field string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	if m, ok := fieldMetas[field]; ok && m.format != nil {
		return m.format(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
