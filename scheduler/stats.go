package scheduler

import "github.com/Dosada05/party-tournament/models"

// PlayerStats summarises participation per player over a generated schedule,
// in the order players first appear.
func PlayerStats(rounds []models.Round) []models.PlayerStats {
	index := make(map[string]int)
	stats := make([]models.PlayerStats, 0)
	faced := make(map[string]map[string]int)

	entry := func(ref models.PlayerRef) *models.PlayerStats {
		i, ok := index[ref.PlayerID]
		if !ok {
			i = len(stats)
			index[ref.PlayerID] = i
			stats = append(stats, models.PlayerStats{
				PlayerID:   ref.PlayerID,
				PlayerName: ref.PlayerName,
				TeamID:     ref.TeamID,
				TeamName:   ref.TeamName,
			})
			faced[ref.PlayerID] = make(map[string]int)
		}
		return &stats[i]
	}

	for _, round := range rounds {
		for _, game := range round.Games {
			for _, p := range game.Team1Players {
				entry(p).GamesPlayed++
			}
			for _, p := range game.Team2Players {
				entry(p).GamesPlayed++
			}
			for _, p := range game.Team1Players {
				for _, q := range game.Team2Players {
					faced[p.PlayerID][q.PlayerID]++
					faced[q.PlayerID][p.PlayerID]++
				}
			}
		}
		for _, p := range round.Resting {
			entry(p).Rested++
		}
	}

	for i := range stats {
		for _, n := range faced[stats[i].PlayerID] {
			stats[i].OpponentsFaced++
			if n > 1 {
				stats[i].RepeatOpponents++
			}
		}
	}
	return stats
}
