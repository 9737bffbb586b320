package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/party-tournament/models"
)

// Validate checks whether the tournament's teams and game types admit a schedule.
// It never mutates t and returns the same result for the same input.
func Validate(t *models.Tournament) models.ValidationResult {
	result := models.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
	if t == nil {
		result.Errors = append(result.Errors, "tournament is missing")
		return result
	}

	teams := t.Teams
	result.Summary.Teams = len(teams)
	result.Summary.Rounds = t.Settings.Rounds
	result.Summary.TotalStations = t.Settings.TotalStations()

	if t.Settings.Rounds < 1 {
		result.Errors = append(result.Errors, fmt.Sprintf("rounds must be at least 1, found %d", t.Settings.Rounds))
	}

	if len(teams) < 2 {
		result.Errors = append(result.Errors, fmt.Sprintf("at least 2 teams are required, found %d", len(teams)))
		return result
	}

	playersPerTeam := len(teams[0].ActivePlayers())
	if sizes := distinctActiveSizes(teams); len(sizes) > 1 {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"all teams must have the same number of active players, found sizes %s",
			joinInts(sizes),
		))
		return result
	}

	result.Summary.PlayersPerTeam = playersPerTeam
	totalPlayers := len(teams) * playersPerTeam
	result.Summary.TotalPlayers = totalPlayers

	if len(t.Settings.GameTypes) == 0 {
		result.Warnings = append(result.Warnings, "no game types are configured, rounds will contain no games")
	}

	demand := 0
	for _, gt := range t.Settings.GameTypes {
		if len(gt.Stations) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("game type %q has no stations", gt.Name))
		}
		switch {
		case gt.PlayersPerTeam < 1:
			result.Errors = append(result.Errors, fmt.Sprintf("game type %q must have at least 1 player per team", gt.Name))
		case gt.PlayersPerTeam > playersPerTeam:
			result.Errors = append(result.Errors, fmt.Sprintf(
				"game type %q needs %d players per team but teams have %d active players",
				gt.Name, gt.PlayersPerTeam, playersPerTeam,
			))
		}
		switch {
		case !models.IsValidPartnerMode(gt.PartnerMode):
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"game type %q has unknown partner mode %q, rotating partners will be used", gt.Name, gt.PartnerMode,
			))
		case gt.PlayersPerTeam > 1 && gt.PartnerMode == "":
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"game type %q has no partner mode set, rotating partners will be used", gt.Name,
			))
		}
		if gt.PlayersPerTeam > 0 {
			demand += len(gt.Stations) * 2 * gt.PlayersPerTeam
		}
	}
	result.Summary.MaxSimultaneousDemand = demand

	totalStations := result.Summary.TotalStations
	if totalPlayers < totalStations*2 {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d players are not enough for %d stations, at least %d are needed",
			totalPlayers, totalStations, totalStations*2,
		))
	}
	if totalPlayers < demand {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d players cannot fill all stations at once (up to %d needed), some stations will sit idle in some rounds",
			totalPlayers, demand,
		))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func distinctActiveSizes(teams []models.Team) []int {
	seen := make(map[int]bool)
	sizes := make([]int, 0, 2)
	for _, team := range teams {
		n := len(team.ActivePlayers())
		if !seen[n] {
			seen[n] = true
			sizes = append(sizes, n)
		}
	}
	sort.Ints(sizes)
	return sizes
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
