package fplapi

import (
	"context"

	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

// LiveStatuses maps the bootstrap elements into availability rows for the
// snapshot overlay.
func (c *Client) LiveStatuses(ctx context.Context) ([]usecase.LiveStatus, error) {
	payload, err := c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.LiveStatus, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		out = append(out, usecase.LiveStatus{
			PlayerID:        el.ID,
			Status:          el.Status,
			News:            el.News,
			ChanceNextRound: Chance(el.ChanceOfPlayingNextRound),
			ChanceThisRound: Chance(el.ChanceOfPlayingThisRound),
			SelectedBy:      ParseDecimal(el.SelectedByPercent),
		})
	}
	return out, nil
}

// ManagerSquad assembles a manager's profile, finances and picks for the
// active gameweek. Squad finances arrive in tenths of a million and are
// converted here.
func (c *Client) ManagerSquad(ctx context.Context, entryID int) (usecase.ManagerSquad, error) {
	gw, err := c.CurrentGameweek(ctx)
	if err != nil {
		return usecase.ManagerSquad{}, err
	}

	entry, err := c.Entry(ctx, entryID)
	if err != nil {
		return usecase.ManagerSquad{}, err
	}

	picks, err := c.Picks(ctx, entryID, gw)
	if err != nil {
		return usecase.ManagerSquad{}, err
	}

	squad := usecase.ManagerSquad{
		Profile: usecase.ManagerProfile{
			EntryID:       entry.ID,
			TeamName:      entry.Name,
			ManagerName:   entry.ManagerName(),
			OverallPoints: entry.SummaryOverallPoints,
			OverallRank:   entry.SummaryOverallRank,
		},
		Finance: usecase.SquadFinance{
			GameweekPoints: picks.EntryHistory.Points,
			TotalPoints:    picks.EntryHistory.TotalPoints,
			TeamValue:      float64(picks.EntryHistory.Value) / 10,
			Bank:           float64(picks.EntryHistory.Bank) / 10,
			TransfersMade:  picks.EntryHistory.EventTransfers,
			TransferCost:   picks.EntryHistory.EventTransfersCost,
		},
		Gameweek: gw,
		Picks:    make([]usecase.SquadPick, 0, len(picks.Picks)),
	}

	for _, p := range picks.Picks {
		squad.Picks = append(squad.Picks, usecase.SquadPick{
			PlayerID:      p.Element,
			Position:      p.Position,
			Multiplier:    p.Multiplier,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
			OnBench:       p.OnBench(),
		})
	}

	return squad, nil
}
