package scheduler

import (
	"sort"

	"github.com/Dosada05/party-tournament/models"
)

// Partnerships splits the team's active players into disjoint groups of
// gameType.PlayersPerTeam. Players that do not fill a whole group are left out.
//
// Fixed mode chunks the roster in order, so the grouping is the same every round.
// Rotating mode reorders players by rotationKey first, which changes the grouping
// from round to round while staying reproducible.
func Partnerships(team models.Team, gameType models.GameType, round int) [][]models.Player {
	size := gameType.PlayersPerTeam
	if size < 1 {
		return nil
	}

	players := team.ActivePlayers()
	if size > 1 && gameType.EffectivePartnerMode() == models.PartnerRotating {
		sort.SliceStable(players, func(i, j int) bool {
			return rotationKey(round, players[i].ID) < rotationKey(round, players[j].ID)
		})
	}

	groups := make([][]models.Player, 0, len(players)/size)
	for start := 0; start+size <= len(players); start += size {
		group := make([]models.Player, size)
		copy(group, players[start:start+size])
		groups = append(groups, group)
	}
	return groups
}

// rotationKey hashes the sum of the ID's character codes together with the round number.
func rotationKey(round int, playerID string) uint32 {
	var sum uint32
	for _, c := range playerID {
		sum += uint32(c)
	}
	x := sum*2654435761 + uint32(round)*40503
	x ^= x >> 15
	x *= 2246822519
	x ^= x >> 13
	return x
}
