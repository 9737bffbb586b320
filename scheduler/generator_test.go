package scheduler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Dosada05/party-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seeds = 25

func generate(t *testing.T, tour *models.Tournament, seed int64) []models.Round {
	t.Helper()
	rounds, err := GenerateSchedule(tour, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	require.Len(t, rounds, tour.Settings.Rounds)
	return rounds
}

func gameCounts(rounds []models.Round) map[string]int {
	counts := make(map[string]int)
	for _, r := range rounds {
		for _, g := range r.Games {
			for _, id := range g.PlayerIDs() {
				counts[id]++
			}
		}
	}
	return counts
}

func mixedTournament() *models.Tournament {
	return newTournament(newTeams(4, 4), 8,
		newGameType("darts", 1, "", "d1", "d2"),
		newGameType("beerpong", 2, models.PartnerFixed, "b1"),
		newGameType("flipcup", 2, models.PartnerRotating, "f1"),
	)
}

func TestGenerateSchedule_RoundInvariants(t *testing.T) {
	for seed := int64(1); seed <= seeds; seed++ {
		tour := mixedTournament()
		sizes := make(map[string]int)
		for _, gt := range tour.Settings.GameTypes {
			sizes[gt.ID] = gt.PlayersPerTeam
		}

		for _, round := range generate(t, tour, seed) {
			seen := make(map[string]bool)
			for _, game := range round.Games {
				for _, id := range game.PlayerIDs() {
					assert.False(t, seen[id], "seed %d round %d: %s double-booked", seed, round.Round, id)
					seen[id] = true
				}

				assert.Len(t, game.Team1Players, sizes[game.GameType])
				assert.Len(t, game.Team2Players, sizes[game.GameType])

				team1 := game.Team1Players[0].TeamID
				team2 := game.Team2Players[0].TeamID
				assert.NotEqual(t, team1, team2, "seed %d: same-team matchup", seed)
				for _, p := range game.Team1Players {
					assert.Equal(t, team1, p.TeamID)
				}
				for _, p := range game.Team2Players {
					assert.Equal(t, team2, p.TeamID)
				}
				assert.Equal(t, models.GamePending, game.Status)
				assert.NotEmpty(t, game.ID)
			}
			for _, p := range round.Resting {
				assert.False(t, seen[p.PlayerID], "%s both played and rested", p.PlayerID)
			}
			assert.Equal(t, 16, len(seen)+len(round.Resting))
		}
	}
}

func TestGenerateSchedule_FixedPartnershipsAreStable(t *testing.T) {
	tour := mixedTournament()
	fixed := make(map[string]bool)
	for _, team := range tour.Teams {
		for key := range groupSets(Partnerships(team, tour.Settings.GameTypes[1], 1)) {
			fixed[key] = true
		}
	}

	for seed := int64(1); seed <= seeds; seed++ {
		for _, round := range generate(t, tour, seed) {
			for _, game := range round.Games {
				if game.GameType != "beerpong" {
					continue
				}
				assert.True(t, fixed[groupKeyOfRefs(game.Team1Players)], "round %d: %v", round.Round, game.Team1Players)
				assert.True(t, fixed[groupKeyOfRefs(game.Team2Players)], "round %d: %v", round.Round, game.Team2Players)
			}
		}
	}
}

func TestGenerateSchedule_FairnessOverManyRounds(t *testing.T) {
	for seed := int64(1); seed <= seeds; seed++ {
		tour := newTournament(newTeams(4, 4), 10, newGameType("darts", 1, "", "s1", "s2"))

		counts := gameCounts(generate(t, tour, seed))

		require.Len(t, counts, 16, "seed %d: some player never played", seed)
		lo, hi := 1<<30, 0
		for _, n := range counts {
			lo = min(lo, n)
			hi = max(hi, n)
		}
		assert.LessOrEqual(t, hi-lo, 2, "seed %d: counts %v", seed, counts)
	}
}

func TestGenerateSchedule_AvoidsRematchesWhenPossible(t *testing.T) {
	for seed := int64(1); seed <= seeds; seed++ {
		tour := newTournament(newTeams(4, 4), 4, newGameType("darts", 1, "", "s1", "s2"))

		for _, s := range PlayerStats(generate(t, tour, seed)) {
			assert.Zero(t, s.RepeatOpponents, "seed %d: %s met someone twice", seed, s.PlayerID)
		}
	}
}

func TestGenerateSchedule_ToleratesUnavoidableRematches(t *testing.T) {
	tour := newTournament(newTeams(2, 2), 10, newGameType("darts", 1, "", "s1"))

	rounds := generate(t, tour, 7)

	for _, r := range rounds {
		assert.Len(t, r.Games, 1)
		assert.Len(t, r.Resting, 2)
	}
}

func TestGenerateSchedule_DartsScenario(t *testing.T) {
	for seed := int64(1); seed <= seeds; seed++ {
		tour := newTournament(newTeams(4, 2), 3, newGameType("darts", 1, "", "s1", "s2"))
		tour.Settings.GameTypes[0].Name = "Darts"

		rounds := generate(t, tour, seed)

		for _, r := range rounds {
			assert.Len(t, r.Games, 2)
			assert.Len(t, r.Resting, 4)
			for _, g := range r.Games {
				assert.Equal(t, "Darts", g.GameTypeName)
			}
		}
		counts := gameCounts(rounds)
		require.Len(t, counts, 8)
		for id, n := range counts {
			assert.Contains(t, []int{1, 2}, n, "seed %d: %s played %d games", seed, id, n)
		}
	}
}

func TestGenerateSchedule_SkipsUnfillableStations(t *testing.T) {
	// 2 teams of 3 can never fill all three stations at once: whichever order the
	// stations are visited in, exactly one of them is left empty each round.
	tour := newTournament(newTeams(2, 3), 3,
		newGameType("beerpong", 2, models.PartnerFixed, "b1"),
		newGameType("darts", 1, "", "d1", "d2"),
	)

	for seed := int64(1); seed <= seeds; seed++ {
		for _, r := range generate(t, tour, seed) {
			require.Len(t, r.Games, 2, "seed %d round %d", seed, r.Round)
			playing := 0
			for _, g := range r.Games {
				playing += len(g.PlayerIDs())
			}
			assert.Equal(t, 6, playing+len(r.Resting))
		}
	}
}

func TestGenerateSchedule_FailsOnInvalidSetup(t *testing.T) {
	tour := newTournament(newTeams(1, 4), 3, newGameType("darts", 1, "", "s1"))

	rounds, err := GenerateSchedule(tour, rand.New(rand.NewSource(1)))

	require.Error(t, err)
	assert.Nil(t, rounds)
	assert.True(t, errors.Is(err, ErrInvalidSetup))
	var setupErr *SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.False(t, setupErr.Result.Valid)
}

func TestGenerateSchedule_RejectsNonPositiveRounds(t *testing.T) {
	for _, rounds := range []int{0, -1} {
		tour := newTournament(newTeams(2, 2), rounds, newGameType("darts", 1, "", "s1"))

		var (
			schedule []models.Round
			err      error
		)
		require.NotPanics(t, func() {
			schedule, err = GenerateSchedule(tour, rand.New(rand.NewSource(1)))
		}, "rounds=%d", rounds)

		assert.Nil(t, schedule)
		var setupErr *SetupError
		require.True(t, errors.As(err, &setupErr), "rounds=%d", rounds)
		assert.Contains(t, setupErr.Result.Errors[0], "rounds must be at least 1")
	}
}

func TestGenerateSchedule_IsReproducibleWithSeed(t *testing.T) {
	ids := func() func() string {
		n := 0
		return func() string {
			n++
			return string(rune('a'+n%26)) + string(rune('0'+n/26))
		}
	}

	tour := mixedTournament()
	first, err := NewRoundGenerator(rand.New(rand.NewSource(42)), WithIDFunc(ids())).GenerateSchedule(tour)
	require.NoError(t, err)
	second, err := NewRoundGenerator(rand.New(rand.NewSource(42)), WithIDFunc(ids())).GenerateSchedule(tour)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSchedule_DoesNotMutateInput(t *testing.T) {
	tour := mixedTournament()
	before := newTournament(newTeams(4, 4), 8, mixedTournament().Settings.GameTypes...)

	generate(t, tour, 3)

	assert.Equal(t, before.Teams, tour.Teams)
	assert.Equal(t, before.Settings, tour.Settings)
}

func TestGenerateSchedule_PlayerRefsAreSnapshots(t *testing.T) {
	tour := newTournament(newTeams(2, 2), 2, newGameType("darts", 1, "", "s1"))
	rounds := generate(t, tour, 5)

	tour.Teams[0].Players[0].Name = "Renamed"
	tour.Teams[0].Name = "Renamed Team"

	for _, r := range rounds {
		for _, g := range r.Games {
			for _, ref := range g.Team1Players {
				assert.NotEqual(t, "Renamed", ref.PlayerName)
				assert.NotEqual(t, "Renamed Team", ref.TeamName)
			}
		}
	}
}

func TestScheduleRound_LeavesPreviousHistoryUntouched(t *testing.T) {
	tour := newTournament(newTeams(4, 2), 1, newGameType("darts", 1, "", "s1", "s2"))
	g := NewRoundGenerator(rand.New(rand.NewSource(9)))

	prev := NewHistory()
	round, next := g.ScheduleRound(tour, prev, 1)

	assert.Empty(t, prev.GameCount)
	assert.Empty(t, prev.RestCount)
	assert.Len(t, next.GameCount, 4)
	assert.Len(t, next.RestCount, 4)
	for _, game := range round.Games {
		for _, id := range game.PlayerIDs() {
			assert.Equal(t, 1, next.GameCount[id])
			assert.Equal(t, "darts", next.LastGameType[id])
		}
	}
	assert.Equal(t, 1, round.Round)
	assert.Equal(t, models.TimerIdle, round.Timer.Status)
}
