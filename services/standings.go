package services

import (
	"sort"

	"github.com/Dosada05/party-tournament/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ComputeStandings tallies completed games per team. Every current team is
// listed; teams only known from game snapshots are added as found.
func ComputeStandings(teams []models.Team, rounds []models.Round) []models.TeamStanding {
	byID := make(map[string]*models.TeamStanding, len(teams))
	order := make([]string, 0, len(teams))

	entry := func(id, name string) *models.TeamStanding {
		if s, ok := byID[id]; ok {
			return s
		}
		s := &models.TeamStanding{TeamID: id, TeamName: name}
		byID[id] = s
		order = append(order, id)
		return s
	}
	for _, t := range teams {
		entry(t.ID, t.Name)
	}

	for _, round := range rounds {
		for _, g := range round.Games {
			if g.Status != models.GameCompleted || g.Result == nil {
				continue
			}
			if len(g.Team1Players) == 0 || len(g.Team2Players) == 0 {
				continue
			}
			home := entry(g.Team1Players[0].TeamID, g.Team1Players[0].TeamName)
			away := entry(g.Team2Players[0].TeamID, g.Team2Players[0].TeamName)
			home.GamesPlayed++
			away.GamesPlayed++

			switch g.Result.Winner {
			case models.WinnerTeam1:
				home.Wins++
				away.Losses++
			case models.WinnerTeam2:
				away.Wins++
				home.Losses++
			case models.WinnerDraw:
				home.Draws++
				away.Draws++
			}

			if g.Result.Team1Score != nil && g.Result.Team2Score != nil {
				home.ScoreFor += *g.Result.Team1Score
				home.ScoreAgainst += *g.Result.Team2Score
				away.ScoreFor += *g.Result.Team2Score
				away.ScoreAgainst += *g.Result.Team1Score
			}
		}
	}

	standings := make([]models.TeamStanding, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.Points = s.Wins*pointsWin + s.Draws*pointsDraw
		s.ScoreDifference = s.ScoreFor - s.ScoreAgainst
		standings = append(standings, *s)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ScoreDifference != b.ScoreDifference {
			return a.ScoreDifference > b.ScoreDifference
		}
		return a.Wins > b.Wins
	})

	// Equal points, difference and wins share a rank.
	for i := range standings {
		if i > 0 && sameStanding(standings[i-1], standings[i]) {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

func sameStanding(a, b models.TeamStanding) bool {
	return a.Points == b.Points && a.ScoreDifference == b.ScoreDifference && a.Wins == b.Wins
}
