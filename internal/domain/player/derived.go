package player

// Value score weights over max-normalized components.
const (
	valueWeightPointsPerMillion = 0.4
	valueWeightForm             = 0.3
	valueWeightXGI              = 0.3
)

// ComputeDerived fills the derived metric columns in place:
//
//   - points_per_million: total points over current price, 0 for free rows
//   - minutes_pct: share of available minutes through the given gameweek,
//     clamped to [0, 100]
//   - value_score: weighted sum of points-per-million, form and expected
//     goal involvements, each normalized by its column maximum
func ComputeDerived(rows Table, currentGW int) {
	if currentGW < 1 {
		currentGW = 1
	}
	available := float64(currentGW) * 90

	for i := range rows {
		p := &rows[i]

		if p.NowCost > 0 {
			p.PointsPerMillion = float64(p.TotalPoints) / p.NowCost
		} else {
			p.PointsPerMillion = 0
		}

		pct := float64(p.Minutes) / available * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		p.MinutesPercent = pct
	}

	maxPPM := rows.MaxNumeric("points_per_million")
	maxForm := rows.MaxNumeric("form")
	maxXGI := rows.MaxNumeric("expected_goal_involvements")

	for i := range rows {
		p := &rows[i]
		score := 0.0
		if maxPPM > 0 {
			score += valueWeightPointsPerMillion * (p.PointsPerMillion / maxPPM)
		}
		if maxForm > 0 {
			score += valueWeightForm * (p.Form / maxForm)
		}
		if maxXGI > 0 {
			score += valueWeightXGI * (p.ExpectedGoalInvolvements / maxXGI)
		}
		p.ValueScore = score
	}
}
