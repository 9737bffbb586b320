package models

// TeamStanding is computed from completed games, never stored.
type TeamStanding struct {
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	GamesPlayed     int    `json:"games_played"`
	Wins            int    `json:"wins"`
	Draws           int    `json:"draws"`
	Losses          int    `json:"losses"`
	ScoreFor        int    `json:"score_for"`
	ScoreAgainst    int    `json:"score_against"`
	ScoreDifference int    `json:"score_difference"`
	Points          int    `json:"points"`
	Rank            int    `json:"rank"`
}

// PlayerStats summarises one player's participation in a schedule.
type PlayerStats struct {
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name"`
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	GamesPlayed     int    `json:"games_played"`
	Rested          int    `json:"rested"`
	OpponentsFaced  int    `json:"opponents_faced"`
	RepeatOpponents int    `json:"repeat_opponents"`
}
