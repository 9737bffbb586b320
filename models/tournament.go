package models

import "time"

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusSetup     TournamentStatus = "setup"
	StatusScheduled TournamentStatus = "scheduled"
	StatusCompleted TournamentStatus = "completed"
)

// Settings holds what the scheduler reads besides the teams.
type Settings struct {
	Rounds               int        `json:"rounds" db:"rounds"`
	RoundDurationMinutes int        `json:"round_duration_minutes" db:"round_duration_minutes"`
	GameTypes            []GameType `json:"game_types" db:"-"`
}

// TotalStations counts stations across all game types.
func (s Settings) TotalStations() int {
	total := 0
	for _, gt := range s.GameTypes {
		total += len(gt.Stations)
	}
	return total
}

// Tournament is the full aggregate: configuration, rosters and the generated schedule.
type Tournament struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Status    TournamentStatus `json:"status" db:"status"`
	Settings  Settings         `json:"settings" db:"-"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	// Populated by the service layer, not stored on the tournaments row.
	Teams      []Team   `json:"teams" db:"-"`
	PlayerPool []Player `json:"player_pool,omitempty" db:"-"`
	Schedule   []Round  `json:"schedule,omitempty" db:"-"`
}

// FindTeam returns the team with the given ID, or nil.
func (t *Tournament) FindTeam(id string) *Team {
	for i := range t.Teams {
		if t.Teams[i].ID == id {
			return &t.Teams[i]
		}
	}
	return nil
}
