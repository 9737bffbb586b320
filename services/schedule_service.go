package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Dosada05/party-tournament/broadcast"
	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/repositories"
	"github.com/Dosada05/party-tournament/scheduler"
	"github.com/Dosada05/party-tournament/storage"
)

type ScheduleService interface {
	Validate(ctx context.Context, tournamentID string) (*models.ValidationResult, error)
	// Preview generates a schedule without storing it.
	Preview(ctx context.Context, tournamentID string) ([]models.Round, error)
	// Generate creates the first schedule. It fails with ErrScheduleExists when one is stored.
	Generate(ctx context.Context, tournamentID string) ([]models.Round, error)
	// Reschedule replaces the stored schedule, discarding recorded results.
	Reschedule(ctx context.Context, tournamentID string) ([]models.Round, error)
	// Reset clears every result but keeps the pairings.
	Reset(ctx context.Context, tournamentID string) ([]models.Round, error)
	ClearSchedule(ctx context.Context, tournamentID string) error
	GetSchedule(ctx context.Context, tournamentID string) ([]models.Round, error)
	RecordResult(ctx context.Context, tournamentID string, roundNumber int, gameID string, input RecordResultInput) (*models.Game, error)
	Standings(ctx context.Context, tournamentID string) ([]models.TeamStanding, error)
	PlayerStats(ctx context.Context, tournamentID string) ([]models.PlayerStats, error)
}

type RecordResultInput struct {
	Winner     models.Winner `json:"winner"`
	Team1Score *int          `json:"team1_score"`
	Team2Score *int          `json:"team2_score"`
}

// Broadcaster pushes a message to everyone listening to a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Archiver stores a snapshot of a committed schedule.
type Archiver interface {
	Archive(ctx context.Context, tournamentID string, rounds []models.Round) (*storage.UploadResult, error)
}

type ScheduleServiceConfig struct {
	// Seed makes every generation reproducible. Nil seeds from the clock.
	Seed     *int64
	Archiver Archiver
	Logger   *slog.Logger
}

type ScheduleUpdatedPayload struct {
	TournamentID string                  `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
	Schedule     []models.Round          `json:"schedule"`
}

type GameUpdatedPayload struct {
	TournamentID string                  `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
	Round        int                     `json:"round"`
	Game         models.Game             `json:"game"`
}

type scheduleService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	tournaments    TournamentService
	hub            Broadcaster
	archiver       Archiver
	seed           *int64
	logger         *slog.Logger
	locks          *keyedMutex
}

func NewScheduleService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	tournaments TournamentService,
	hub Broadcaster,
	cfg ScheduleServiceConfig,
) ScheduleService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &scheduleService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		tournaments:    tournaments,
		hub:            hub,
		archiver:       cfg.Archiver,
		seed:           cfg.Seed,
		logger:         logger,
		locks:          newKeyedMutex(),
	}
}

func (s *scheduleService) generator() *scheduler.RoundGenerator {
	seed := time.Now().UnixNano()
	if s.seed != nil {
		seed = *s.seed
	}
	return scheduler.NewRoundGenerator(rand.New(rand.NewSource(seed)))
}

func (s *scheduleService) Validate(ctx context.Context, tournamentID string) (*models.ValidationResult, error) {
	t, err := s.tournaments.GetFull(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	result := scheduler.Validate(t)
	return &result, nil
}

func (s *scheduleService) Preview(ctx context.Context, tournamentID string) ([]models.Round, error) {
	t, err := s.tournaments.GetFull(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.generator().GenerateSchedule(t)
}

func (s *scheduleService) Generate(ctx context.Context, tournamentID string) ([]models.Round, error) {
	return s.generate(ctx, tournamentID, false)
}

func (s *scheduleService) Reschedule(ctx context.Context, tournamentID string) ([]models.Round, error) {
	return s.generate(ctx, tournamentID, true)
}

// withTournamentLock runs fn in a transaction holding both the in-process lock
// and the tournament row lock. fn gets the locked row; every read it needs must go through exec.
func (s *scheduleService) withTournamentLock(ctx context.Context, tournamentID string, fn func(exec repositories.SQLExecutor, t *models.Tournament) error) error {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.LockForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "failed to lock tournament")
		}
		return fn(exec, t)
	})
}

func (s *scheduleService) generate(ctx context.Context, tournamentID string, replace bool) ([]models.Round, error) {
	var rounds []models.Round

	err := s.withTournamentLock(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := s.tournaments.LoadAggregate(ctx, exec, t); err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}
		if len(t.Schedule) > 0 && !replace {
			return ErrScheduleExists
		}

		var err error
		rounds, err = s.generator().GenerateSchedule(t)
		if err != nil {
			return err
		}

		if err := s.roundRepo.ReplaceAll(ctx, exec, tournamentID, rounds); err != nil {
			return handleRepositoryError(err, "failed to store schedule")
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusScheduled); err != nil {
			return handleRepositoryError(err, "failed to update tournament status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		slog.String("tournament_id", tournamentID),
		slog.Int("rounds", len(rounds)),
		slog.Bool("replaced", replace))

	s.publishSchedule(tournamentID, models.StatusScheduled, rounds)
	s.archive(ctx, tournamentID, rounds)
	return rounds, nil
}

func (s *scheduleService) archive(ctx context.Context, tournamentID string, rounds []models.Round) {
	if s.archiver == nil {
		return
	}
	result, err := s.archiver.Archive(ctx, tournamentID, rounds)
	if err != nil {
		s.logger.Error("failed to archive schedule", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.logger.Info("schedule archived", slog.String("tournament_id", tournamentID), slog.String("location", result.Location))
}

func (s *scheduleService) publishSchedule(tournamentID string, status models.TournamentStatus, rounds []models.Round) {
	if s.hub == nil {
		return
	}
	room := broadcast.RoomForTournament(tournamentID)
	s.hub.BroadcastToRoom(room, broadcast.Message{
		Type: broadcast.EventScheduleUpdated,
		Payload: ScheduleUpdatedPayload{
			TournamentID: tournamentID,
			Status:       status,
			Schedule:     rounds,
		},
		RoomID: room,
	})
}

func (s *scheduleService) Reset(ctx context.Context, tournamentID string) ([]models.Round, error) {
	var rounds []models.Round

	err := s.withTournamentLock(ctx, tournamentID, func(exec repositories.SQLExecutor, _ *models.Tournament) error {
		var err error
		rounds, err = s.roundRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load current schedule: %w", err)
		}
		if len(rounds) == 0 {
			return ErrScheduleNotFound
		}

		for i := range rounds {
			for j := range rounds[i].Games {
				rounds[i].Games[j].Status = models.GamePending
				rounds[i].Games[j].Result = nil
			}
		}

		if err := s.roundRepo.ReplaceAll(ctx, exec, tournamentID, rounds); err != nil {
			return handleRepositoryError(err, "failed to store schedule")
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusScheduled); err != nil {
			return handleRepositoryError(err, "failed to update tournament status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule results reset", slog.String("tournament_id", tournamentID))
	s.publishSchedule(tournamentID, models.StatusScheduled, rounds)
	return rounds, nil
}

func (s *scheduleService) ClearSchedule(ctx context.Context, tournamentID string) error {
	err := s.withTournamentLock(ctx, tournamentID, func(exec repositories.SQLExecutor, _ *models.Tournament) error {
		if err := s.roundRepo.DeleteAll(ctx, exec, tournamentID); err != nil {
			return handleRepositoryError(err, "failed to delete schedule")
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusSetup); err != nil {
			return handleRepositoryError(err, "failed to update tournament status")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("schedule cleared", slog.String("tournament_id", tournamentID))
	s.publishSchedule(tournamentID, models.StatusSetup, []models.Round{})
	return nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, tournamentID string) ([]models.Round, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament")
	}
	rounds, err := s.roundRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if rounds == nil {
		return []models.Round{}, nil
	}
	return rounds, nil
}

func validateResult(input RecordResultInput) error {
	switch input.Winner {
	case models.WinnerTeam1, models.WinnerTeam2, models.WinnerDraw:
	default:
		return fmt.Errorf("%w: winner must be team1, team2 or draw, got %q", ErrValidationFailed, input.Winner)
	}
	if (input.Team1Score != nil && *input.Team1Score < 0) || (input.Team2Score != nil && *input.Team2Score < 0) {
		return fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}
	return nil
}

func (s *scheduleService) RecordResult(ctx context.Context, tournamentID string, roundNumber int, gameID string, input RecordResultInput) (*models.Game, error) {
	if err := validateResult(input); err != nil {
		return nil, err
	}

	var (
		updated models.Game
		status  models.TournamentStatus
	)
	err := s.withTournamentLock(ctx, tournamentID, func(exec repositories.SQLExecutor, _ *models.Tournament) error {
		rounds, err := s.roundRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load current schedule: %w", err)
		}
		if len(rounds) == 0 {
			return ErrScheduleNotFound
		}

		var round *models.Round
		for i := range rounds {
			if rounds[i].Round == roundNumber {
				round = &rounds[i]
				break
			}
		}
		if round == nil {
			return ErrRoundNotFound
		}
		game := round.FindGame(gameID)
		if game == nil {
			return ErrGameNotFound
		}

		game.Status = models.GameCompleted
		game.Result = &models.GameResult{
			Winner:     input.Winner,
			Team1Score: input.Team1Score,
			Team2Score: input.Team2Score,
		}
		updated = *game

		if err := s.roundRepo.Update(ctx, exec, tournamentID, *round); err != nil {
			return handleRepositoryError(err, "failed to store result")
		}

		status = models.StatusCompleted
		for _, r := range rounds {
			if !r.Completed() {
				status = models.StatusScheduled
				break
			}
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, status); err != nil {
			return handleRepositoryError(err, "failed to update tournament status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("game result recorded",
		slog.String("tournament_id", tournamentID),
		slog.Int("round", roundNumber),
		slog.String("game_id", gameID),
		slog.String("winner", string(input.Winner)))

	if s.hub != nil {
		room := broadcast.RoomForTournament(tournamentID)
		s.hub.BroadcastToRoom(room, broadcast.Message{
			Type: broadcast.EventGameUpdated,
			Payload: GameUpdatedPayload{
				TournamentID: tournamentID,
				Status:       status,
				Round:        roundNumber,
				Game:         updated,
			},
			RoomID: room,
		})
	}
	return &updated, nil
}

func (s *scheduleService) Standings(ctx context.Context, tournamentID string) ([]models.TeamStanding, error) {
	t, err := s.tournaments.GetFull(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return ComputeStandings(t.Teams, t.Schedule), nil
}

func (s *scheduleService) PlayerStats(ctx context.Context, tournamentID string) ([]models.PlayerStats, error) {
	rounds, err := s.GetSchedule(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return scheduler.PlayerStats(rounds), nil
}
