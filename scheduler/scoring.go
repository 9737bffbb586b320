package scheduler

import "github.com/Dosada05/party-tournament/models"

// Weights tune the matchup score. Rematch must outweigh GameCount, which must
// outweigh Variety; the literal values are adjustable.
type Weights struct {
	GameCount float64 `json:"game_count"`
	Rematch   float64 `json:"rematch"`
	Variety   float64 `json:"variety"`
	Jitter    float64 `json:"jitter"`
}

var DefaultWeights = Weights{
	GameCount: 10,
	Rematch:   20,
	Variety:   5,
	Jitter:    5,
}

// matchupScore is the deterministic part of a candidate's score; higher is better.
func (w Weights) matchupScore(h History, gameTypeID string, side1, side2 []models.Player) float64 {
	players := len(side1) + len(side2)
	if players == 0 {
		return 0
	}

	games := 0
	for _, p := range side1 {
		games += h.GameCount[p.ID]
	}
	for _, p := range side2 {
		games += h.GameCount[p.ID]
	}
	score := -w.GameCount * float64(games) / float64(players)

	for _, p := range side1 {
		for _, q := range side2 {
			if h.Faced(p.ID, q.ID) > 0 {
				score -= w.Rematch
			}
		}
	}

	// A player with no previous game counts as switching activity.
	for _, side := range [][]models.Player{side1, side2} {
		for _, p := range side {
			if last, ok := h.LastGameType[p.ID]; !ok || last != gameTypeID {
				score += w.Variety
			}
		}
	}
	return score
}
