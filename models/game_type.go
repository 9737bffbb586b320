package models

import "time"

type PartnerMode string

const (
	PartnerFixed    PartnerMode = "fixed"
	PartnerRotating PartnerMode = "rotating"
)

// Station is a place where one game of its game type is played each round.
type Station struct {
	ID         string `json:"id" db:"id"`
	GameTypeID string `json:"game_type_id,omitempty" db:"game_type_id"`
	Name       string `json:"name" db:"name"`
	Position   int    `json:"-" db:"position"`
}

type GameType struct {
	ID             string      `json:"id" db:"id"`
	TournamentID   string      `json:"tournament_id,omitempty" db:"tournament_id"`
	Name           string      `json:"name" db:"name"`
	PlayersPerTeam int         `json:"players_per_team" db:"players_per_team"`
	PartnerMode    PartnerMode `json:"partner_mode,omitempty" db:"partner_mode"`
	Position       int         `json:"-" db:"position"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	Stations []Station `json:"stations" db:"-"`
}

// EffectivePartnerMode falls back to rotating unless the mode is fixed.
func (g GameType) EffectivePartnerMode() PartnerMode {
	if g.PartnerMode == PartnerFixed {
		return PartnerFixed
	}
	return PartnerRotating
}

func IsValidPartnerMode(m PartnerMode) bool {
	return m == "" || m == PartnerFixed || m == PartnerRotating
}
