package models

type GameStatus string

const (
	GamePending   GameStatus = "pending"
	GameCompleted GameStatus = "completed"
)

type Winner string

const (
	WinnerTeam1 Winner = "team1"
	WinnerTeam2 Winner = "team2"
	WinnerDraw  Winner = "draw"
)

type GameResult struct {
	Winner     Winner `json:"winner"`
	Team1Score *int   `json:"team1_score,omitempty"`
	Team2Score *int   `json:"team2_score,omitempty"`
}

// PlayerRef is a copy of a player's identity taken when the game was generated.
// It is not a live reference: renaming or moving a player later
// must not rewrite history.
type PlayerRef struct {
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

type Game struct {
	ID           string      `json:"id"`
	Station      string      `json:"station"`
	StationName  string      `json:"station_name"`
	GameType     string      `json:"game_type"`
	GameTypeName string      `json:"game_type_name"`
	Team1Players []PlayerRef `json:"team1_players"`
	Team2Players []PlayerRef `json:"team2_players"`
	Status       GameStatus  `json:"status"`
	Result       *GameResult `json:"result,omitempty"`
}

// PlayerIDs lists both sides' player IDs, team1 first.
func (g Game) PlayerIDs() []string {
	ids := make([]string, 0, len(g.Team1Players)+len(g.Team2Players))
	for _, p := range g.Team1Players {
		ids = append(ids, p.PlayerID)
	}
	for _, p := range g.Team2Players {
		ids = append(ids, p.PlayerID)
	}
	return ids
}

type TimerStatus string

const TimerIdle TimerStatus = "idle"

type RoundTimer struct {
	DurationMinutes int         `json:"duration_minutes"`
	Status          TimerStatus `json:"status"`
}

type Round struct {
	Round   int         `json:"round"`
	Games   []Game      `json:"games"`
	Resting []PlayerRef `json:"resting"`
	Timer   RoundTimer  `json:"timer"`
}

// FindGame returns a pointer into r.Games, or nil.
func (r *Round) FindGame(id string) *Game {
	for i := range r.Games {
		if r.Games[i].ID == id {
			return &r.Games[i]
		}
	}
	return nil
}

func (r Round) Completed() bool {
	for _, g := range r.Games {
		if g.Status != GameCompleted {
			return false
		}
	}
	return true
}
