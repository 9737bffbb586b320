package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// GetFull loads the whole aggregate: rosters, pool, game types with stations and the schedule.
	GetFull(ctx context.Context, id string) (*models.Tournament, error)
	// LoadAggregate fills t's teams, pool, game types and schedule reading through exec.
	LoadAggregate(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
}

type CreateTournamentInput struct {
	Name                 string `json:"name"`
	Rounds               *int   `json:"rounds"`
	RoundDurationMinutes *int   `json:"round_duration_minutes"`
}

type UpdateTournamentInput struct {
	Name                 *string `json:"name"`
	Rounds               *int    `json:"rounds"`
	RoundDurationMinutes *int    `json:"round_duration_minutes"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

const (
	defaultRounds    = 1
	defaultListLimit = 50
	maxListLimit     = 200
)

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	gameTypeRepo   repositories.GameTypeRepository
	roundRepo      repositories.RoundRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	gameTypeRepo repositories.GameTypeRepository,
	roundRepo repositories.RoundRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		gameTypeRepo:   gameTypeRepo,
		roundRepo:      roundRepo,
	}
}

func validateSettings(rounds, duration int) error {
	if rounds < 1 {
		return fmt.Errorf("%w: rounds must be at least 1, got %d", ErrValidationFailed, rounds)
	}
	if duration < 0 {
		return fmt.Errorf("%w: round duration cannot be negative, got %d", ErrValidationFailed, duration)
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := cleanName(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	t := &models.Tournament{
		ID:     uuid.NewString(),
		Name:   name,
		Status: models.StatusSetup,
		Settings: models.Settings{
			Rounds:    defaultRounds,
			GameTypes: []models.GameType{},
		},
		Teams:    []models.Team{},
		Schedule: []models.Round{},
	}
	if input.Rounds != nil {
		t.Settings.Rounds = *input.Rounds
	}
	if input.RoundDurationMinutes != nil {
		t.Settings.RoundDurationMinutes = *input.RoundDurationMinutes
	}
	if err := validateSettings(t.Settings.Rounds, t.Settings.RoundDurationMinutes); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err, "failed to create tournament")
	}
	return t, nil
}

func (s *tournamentService) GetFull(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament")
	}

	var (
		teams     []models.Team
		players   []models.Player
		gameTypes []models.GameType
		rounds    []models.Round
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if teams, err = s.teamRepo.ListByTournament(gCtx, nil, id); err != nil {
			log.Printf("Error fetching teams for tournament %s in GetFull: %v", id, err)
			return fmt.Errorf("failed to list teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if players, err = s.playerRepo.ListByTournament(gCtx, nil, id); err != nil {
			log.Printf("Error fetching players for tournament %s in GetFull: %v", id, err)
			return fmt.Errorf("failed to list players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if gameTypes, err = s.gameTypeRepo.ListByTournament(gCtx, nil, id); err != nil {
			log.Printf("Error fetching game types for tournament %s in GetFull: %v", id, err)
			return fmt.Errorf("failed to list game types: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rounds, err = s.roundRepo.ListByTournament(gCtx, nil, id); err != nil {
			log.Printf("Error fetching rounds for tournament %s in GetFull: %v", id, err)
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	assemble(t, teams, players, gameTypes, rounds)
	return t, nil
}

// LoadAggregate runs its queries one after another: a transaction owns a single connection.
func (s *tournamentService) LoadAggregate(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	teams, err := s.teamRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	players, err := s.playerRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	gameTypes, err := s.gameTypeRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list game types: %w", err)
	}
	rounds, err := s.roundRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return fmt.Errorf("failed to list rounds: %w", err)
	}

	assemble(t, teams, players, gameTypes, rounds)
	return nil
}

// assemble places each player on its team (roster order preserved) or in the pool.
func assemble(t *models.Tournament, teams []models.Team, players []models.Player, gameTypes []models.GameType, rounds []models.Round) {
	index := make(map[string]int, len(teams))
	for i := range teams {
		teams[i].Players = []models.Player{}
		index[teams[i].ID] = i
	}

	pool := []models.Player{}
	for _, p := range players {
		if p.TeamID == nil {
			pool = append(pool, p)
			continue
		}
		i, ok := index[*p.TeamID]
		if !ok {
			pool = append(pool, p)
			continue
		}
		teams[i].Players = append(teams[i].Players, p)
	}

	if teams == nil {
		teams = []models.Team{}
	}
	if gameTypes == nil {
		gameTypes = []models.GameType{}
	}
	if rounds == nil {
		rounds = []models.Round{}
	}

	t.Teams = teams
	t.PlayerPool = pool
	t.Settings.GameTypes = gameTypes
	t.Schedule = rounds
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: filter.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament")
	}

	if input.Name != nil {
		name := cleanName(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		t.Name = name
	}
	if input.Rounds != nil {
		t.Settings.Rounds = *input.Rounds
	}
	if input.RoundDurationMinutes != nil {
		t.Settings.RoundDurationMinutes = *input.RoundDurationMinutes
	}
	if err := validateSettings(t.Settings.Rounds, t.Settings.RoundDurationMinutes); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, handleRepositoryError(err, "failed to update tournament")
	}
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, "failed to delete tournament")
	}
	return nil
}
