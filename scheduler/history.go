package scheduler

import "github.com/Dosada05/party-tournament/models"

// History is what carries over from one round to the next. ScheduleRound never
// mutates the History it receives; it returns an updated copy.
type History struct {
	GameCount    map[string]int            `json:"game_count"`
	Opponents    map[string]map[string]int `json:"opponents"`
	LastGameType map[string]string         `json:"last_game_type"`
	RestCount    map[string]int            `json:"rest_count"`
}

func NewHistory() History {
	return History{
		GameCount:    make(map[string]int),
		Opponents:    make(map[string]map[string]int),
		LastGameType: make(map[string]string),
		RestCount:    make(map[string]int),
	}
}

func (h History) Clone() History {
	c := History{
		GameCount:    make(map[string]int, len(h.GameCount)),
		Opponents:    make(map[string]map[string]int, len(h.Opponents)),
		LastGameType: make(map[string]string, len(h.LastGameType)),
		RestCount:    make(map[string]int, len(h.RestCount)),
	}
	for id, n := range h.GameCount {
		c.GameCount[id] = n
	}
	for id, faced := range h.Opponents {
		m := make(map[string]int, len(faced))
		for other, n := range faced {
			m[other] = n
		}
		c.Opponents[id] = m
	}
	for id, gt := range h.LastGameType {
		c.LastGameType[id] = gt
	}
	for id, n := range h.RestCount {
		c.RestCount[id] = n
	}
	return c
}

// Faced reports how many times a and b have been on opposite sides.
func (h History) Faced(a, b string) int {
	return h.Opponents[a][b]
}

func (h History) recordGame(g models.Game) {
	for _, p := range g.Team1Players {
		for _, q := range g.Team2Players {
			h.addOpponent(p.PlayerID, q.PlayerID)
			h.addOpponent(q.PlayerID, p.PlayerID)
		}
	}
	for _, id := range g.PlayerIDs() {
		h.GameCount[id]++
		h.LastGameType[id] = g.GameType
	}
}

func (h History) addOpponent(a, b string) {
	faced, ok := h.Opponents[a]
	if !ok {
		faced = make(map[string]int)
		h.Opponents[a] = faced
	}
	faced[b]++
}

func (h History) recordRest(resting []models.PlayerRef) {
	for _, p := range resting {
		h.RestCount[p.PlayerID]++
	}
}
