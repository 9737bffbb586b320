package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/party-tournament/models"
	"github.com/google/uuid"
)

var ErrInvalidSetup = errors.New("tournament setup is not schedulable")

// SetupError carries the validation result that blocked generation.
type SetupError struct {
	Result models.ValidationResult
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSetup.Error(), strings.Join(e.Result.Errors, "; "))
}

func (e *SetupError) Unwrap() error {
	return ErrInvalidSetup
}

// RoundGenerator builds multi-round schedules. A generator is not safe for
// concurrent use because it owns its random source.
type RoundGenerator struct {
	rng     *rand.Rand
	weights Weights
	newID   func() string
}

type Option func(*RoundGenerator)

func WithWeights(w Weights) Option {
	return func(g *RoundGenerator) {
		g.weights = w
	}
}

// WithIDFunc overrides how game IDs are produced.
func WithIDFunc(f func() string) Option {
	return func(g *RoundGenerator) {
		g.newID = f
	}
}

// NewRoundGenerator uses rng for station order and tie-breaking. A nil rng is
// replaced by a time-seeded one.
func NewRoundGenerator(rng *rand.Rand, opts ...Option) *RoundGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &RoundGenerator{
		rng:     rng,
		weights: DefaultWeights,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSchedule is a shorthand for NewRoundGenerator(rng).GenerateSchedule(t).
func GenerateSchedule(t *models.Tournament, rng *rand.Rand) ([]models.Round, error) {
	return NewRoundGenerator(rng).GenerateSchedule(t)
}

// GenerateSchedule produces exactly t.Settings.Rounds rounds or fails before
// producing any. Stations that cannot be filled in a round are skipped.
func (g *RoundGenerator) GenerateSchedule(t *models.Tournament) ([]models.Round, error) {
	result := Validate(t)
	if !result.Valid {
		return nil, &SetupError{Result: result}
	}

	rounds := make([]models.Round, 0, t.Settings.Rounds)
	history := NewHistory()
	for n := 1; n <= t.Settings.Rounds; n++ {
		var round models.Round
		round, history = g.ScheduleRound(t, history, n)
		rounds = append(rounds, round)
	}
	return rounds, nil
}

type stationSlot struct {
	index    int
	station  models.Station
	gameType models.GameType
}

func flattenStations(gameTypes []models.GameType) []stationSlot {
	slots := make([]stationSlot, 0)
	for _, gt := range gameTypes {
		for _, st := range gt.Stations {
			slots = append(slots, stationSlot{index: len(slots), station: st, gameType: gt})
		}
	}
	return slots
}

type matchup struct {
	team1, team2 *models.Team
	side1, side2 []models.Player
	score        float64
}

// ScheduleRound fills one round given the history of the previous ones and
// returns the round together with the updated history. prev is left untouched.
func (g *RoundGenerator) ScheduleRound(t *models.Tournament, prev History, round int) (models.Round, History) {
	history := prev.Clone()
	busy := make(map[string]bool)

	slots := flattenStations(t.Settings.GameTypes)
	g.rng.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})

	type placed struct {
		index int
		game  models.Game
	}
	games := make([]placed, 0, len(slots))
	for _, slot := range slots {
		m, ok := g.bestMatchup(t.Teams, slot, round, busy, history)
		if !ok {
			continue
		}
		game := g.newGame(slot, m)
		for _, id := range game.PlayerIDs() {
			busy[id] = true
		}
		history.recordGame(game)
		games = append(games, placed{index: slot.index, game: game})
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].index < games[j].index
	})
	out := models.Round{
		Round:   round,
		Games:   make([]models.Game, 0, len(games)),
		Resting: restingPlayers(t.Teams, busy),
		Timer: models.RoundTimer{
			DurationMinutes: t.Settings.RoundDurationMinutes,
			Status:          models.TimerIdle,
		},
	}
	for _, p := range games {
		out.Games = append(out.Games, p.game)
	}
	history.recordRest(out.Resting)
	return out, history
}

func (g *RoundGenerator) bestMatchup(teams []models.Team, slot stationSlot, round int, busy map[string]bool, h History) (matchup, bool) {
	size := slot.gameType.PlayersPerTeam
	if size < 1 {
		return matchup{}, false
	}

	candidates := make([]int, 0, len(teams))
	for i := range teams {
		if availableCount(teams[i], busy) >= size {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < 2 {
		return matchup{}, false
	}

	groups := make(map[int][][]models.Player, len(candidates))
	for _, i := range candidates {
		groups[i] = availableGroups(Partnerships(teams[i], slot.gameType, round), busy)
	}

	var best matchup
	found := false
	for a := 0; a < len(candidates); a++ {
		for b := a + 1; b < len(candidates); b++ {
			i, j := candidates[a], candidates[b]
			for _, side1 := range groups[i] {
				for _, side2 := range groups[j] {
					score := g.weights.matchupScore(h, slot.gameType.ID, side1, side2) + g.jitter()
					if !found || score > best.score {
						best = matchup{
							team1: &teams[i],
							team2: &teams[j],
							side1: side1,
							side2: side2,
							score: score,
						}
						found = true
					}
				}
			}
		}
	}
	return best, found
}

func (g *RoundGenerator) jitter() float64 {
	if g.weights.Jitter <= 0 {
		return 0
	}
	return g.rng.Float64() * g.weights.Jitter
}

func (g *RoundGenerator) newGame(slot stationSlot, m matchup) models.Game {
	game := models.Game{
		ID:           g.newID(),
		Station:      slot.station.ID,
		StationName:  slot.station.Name,
		GameType:     slot.gameType.ID,
		GameTypeName: slot.gameType.Name,
		Team1Players: make([]models.PlayerRef, 0, len(m.side1)),
		Team2Players: make([]models.PlayerRef, 0, len(m.side2)),
		Status:       models.GamePending,
	}
	for _, p := range m.side1 {
		game.Team1Players = append(game.Team1Players, m.team1.Ref(p))
	}
	for _, p := range m.side2 {
		game.Team2Players = append(game.Team2Players, m.team2.Ref(p))
	}
	return game
}

func availableCount(team models.Team, busy map[string]bool) int {
	n := 0
	for _, p := range team.Players {
		if p.IsActive() && !busy[p.ID] {
			n++
		}
	}
	return n
}

// availableGroups keeps the groups whose members are all still free this round.
func availableGroups(groups [][]models.Player, busy map[string]bool) [][]models.Player {
	free := make([][]models.Player, 0, len(groups))
	for _, group := range groups {
		ok := true
		for _, p := range group {
			if busy[p.ID] {
				ok = false
				break
			}
		}
		if ok {
			free = append(free, group)
		}
	}
	return free
}

func restingPlayers(teams []models.Team, busy map[string]bool) []models.PlayerRef {
	resting := make([]models.PlayerRef, 0)
	for _, team := range teams {
		for _, p := range team.ActivePlayers() {
			if !busy[p.ID] {
				resting = append(resting, team.Ref(p))
			}
		}
	}
	return resting
}
