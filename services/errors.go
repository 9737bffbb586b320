package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrGameTypeNameRequired   = errors.New("game type name is required")
	ErrStationNameRequired    = errors.New("station name is required")

	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrGameTypeNameConflict   = errors.New("game type name is already in use")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameTypeNotFound   = errors.New("game type not found")
	ErrStationNotFound    = errors.New("station not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrGameNotFound       = errors.New("game not found")

	// Ошибки расписания
	ErrScheduleExists   = errors.New("tournament already has a schedule, use reschedule to replace it")
	ErrScheduleNotFound = errors.New("tournament has no schedule")
)
