package models

// SetupSummary describes the tournament shape the validator saw.
type SetupSummary struct {
	Teams                 int `json:"teams"`
	PlayersPerTeam        int `json:"players_per_team"`
	TotalPlayers          int `json:"total_players"`
	TotalStations         int `json:"total_stations"`
	MaxSimultaneousDemand int `json:"max_simultaneous_demand"`
	Rounds                int `json:"rounds"`
}

type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
	Summary  SetupSummary `json:"summary"`
}
