package scheduler

import (
	"fmt"
	"sort"

	"github.com/Dosada05/party-tournament/models"
)

func newTeam(id string, players int) models.Team {
	team := models.Team{ID: id, Name: "Team " + id}
	for i := 1; i <= players; i++ {
		team.Players = append(team.Players, models.Player{
			ID:     fmt.Sprintf("%s-p%d", id, i),
			Name:   fmt.Sprintf("Player %d of %s", i, id),
			Status: models.PlayerActive,
			TeamID: &team.ID,
		})
	}
	return team
}

func newTeams(count, players int) []models.Team {
	teams := make([]models.Team, 0, count)
	for i := 1; i <= count; i++ {
		teams = append(teams, newTeam(fmt.Sprintf("t%d", i), players))
	}
	return teams
}

func newGameType(id string, playersPerTeam int, mode models.PartnerMode, stations ...string) models.GameType {
	gt := models.GameType{ID: id, Name: id, PlayersPerTeam: playersPerTeam, PartnerMode: mode}
	for _, s := range stations {
		gt.Stations = append(gt.Stations, models.Station{ID: s, GameTypeID: id, Name: "Station " + s})
	}
	return gt
}

func newTournament(teams []models.Team, rounds int, gameTypes ...models.GameType) *models.Tournament {
	return &models.Tournament{
		ID:    "tour",
		Name:  "Test Cup",
		Teams: teams,
		Settings: models.Settings{
			Rounds:    rounds,
			GameTypes: gameTypes,
		},
	}
}

func groupSets(groups [][]models.Player) map[string]bool {
	sets := make(map[string]bool, len(groups))
	for _, g := range groups {
		sets[groupKeyOfPlayers(g)] = true
	}
	return sets
}

func groupKeyOfPlayers(group []models.Player) string {
	ids := make([]string, len(group))
	for i, p := range group {
		ids[i] = p.ID
	}
	return groupKey(ids)
}

func groupKeyOfRefs(refs []models.PlayerRef) string {
	ids := make([]string, len(refs))
	for i, p := range refs {
		ids[i] = p.PlayerID
	}
	return groupKey(ids)
}

func groupKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return fmt.Sprint(sorted)
}
