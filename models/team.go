package models

import "time"

type PlayerStatus string

const (
	PlayerActive   PlayerStatus = "active"
	PlayerInactive PlayerStatus = "inactive"
)

// Player belongs to at most one team. Players without a team form the tournament's pool.
type Player struct {
	ID           string       `json:"id" db:"id"`
	TournamentID string       `json:"tournament_id,omitempty" db:"tournament_id"`
	TeamID       *string      `json:"team_id,omitempty" db:"team_id"`
	Name         string       `json:"name" db:"name"`
	Status       PlayerStatus `json:"status" db:"status"`
	Position     int          `json:"position" db:"position"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

func (p Player) IsActive() bool {
	return p.Status == PlayerActive
}

type Team struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id,omitempty" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Roster order matters: fixed partnerships are formed from it.
	Players []Player `json:"players" db:"-"`
}

// ActivePlayers returns a copy of the active players in roster order.
func (t Team) ActivePlayers() []Player {
	active := make([]Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// Ref snapshots a player of this team for embedding into a game record.
func (t Team) Ref(p Player) PlayerRef {
	return PlayerRef{
		TeamID:     t.ID,
		TeamName:   t.Name,
		PlayerID:   p.ID,
		PlayerName: p.Name,
	}
}
