package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/repositories"
	"github.com/go-andiamo/splitter"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type TeamService interface {
	CreateTeam(ctx context.Context, tournamentID string, input TeamInput) (*models.Team, error)
	RenameTeam(ctx context.Context, teamID string, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error

	AddPlayer(ctx context.Context, tournamentID string, input AddPlayerInput) (*models.Player, error)
	// BulkAddPlayers accepts names separated by commas. Quoted names may contain commas.
	BulkAddPlayers(ctx context.Context, tournamentID string, input BulkAddPlayersInput) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, playerID string, input UpdatePlayerInput) (*models.Player, error)
	// MovePlayer puts the player at the end of the target roster. A nil team moves it to the pool.
	MovePlayer(ctx context.Context, playerID string, teamID *string) (*models.Player, error)
	RemovePlayer(ctx context.Context, playerID string) error
	SearchPlayers(ctx context.Context, tournamentID, query string) ([]models.Player, error)
}

type TeamInput struct {
	Name string `json:"name"`
}

type AddPlayerInput struct {
	Name   string  `json:"name"`
	TeamID *string `json:"team_id"`
}

type BulkAddPlayersInput struct {
	Names  string  `json:"names"`
	TeamID *string `json:"team_id"`
}

type UpdatePlayerInput struct {
	Name   *string              `json:"name"`
	Status *models.PlayerStatus `json:"status"`
}

const maxBulkPlayers = 200

type teamService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	names          splitter.Splitter
}

func NewTeamService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
) TeamService {
	names, err := splitter.NewSplitter(',', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		panic(fmt.Sprintf("services: building name splitter: %v", err))
	}
	return &teamService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		names:          names,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, tournamentID string, input TeamInput) (*models.Team, error) {
	name := cleanName(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Name:         name,
		Players:      []models.Player{},
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, handleRepositoryError(err, "failed to create team")
	}
	return team, nil
}

func (s *teamService) RenameTeam(ctx context.Context, teamID string, input TeamInput) (*models.Team, error) {
	name := cleanName(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get team")
	}
	team.Name = name
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, handleRepositoryError(err, "failed to rename team")
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return handleRepositoryError(err, "failed to delete team")
	}
	return nil
}

// checkTeam verifies that teamID, when set, belongs to the tournament.
func (s *teamService) checkTeam(ctx context.Context, tournamentID string, teamID *string) error {
	if teamID == nil {
		return nil
	}
	team, err := s.teamRepo.GetByID(ctx, *teamID)
	if err != nil {
		return handleRepositoryError(err, "failed to get team")
	}
	if team.TournamentID != tournamentID {
		return fmt.Errorf("%w: team %s belongs to another tournament", ErrValidationFailed, *teamID)
	}
	return nil
}

func (s *teamService) AddPlayer(ctx context.Context, tournamentID string, input AddPlayerInput) (*models.Player, error) {
	name := cleanName(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	if err := s.checkTeam(ctx, tournamentID, input.TeamID); err != nil {
		return nil, err
	}

	player := &models.Player{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		TeamID:       input.TeamID,
		Name:         name,
		Status:       models.PlayerActive,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err, "failed to add player")
	}
	return player, nil
}

// parseNames splits a comma-separated list. Surrounding quotes are removed and blanks skipped.
func (s *teamService) parseNames(raw string) ([]string, error) {
	parts, err := s.names.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) {
			part = strings.ReplaceAll(part[1:len(part)-1], `""`, `"`)
		}
		if name := cleanName(part); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *teamService) BulkAddPlayers(ctx context.Context, tournamentID string, input BulkAddPlayersInput) ([]models.Player, error) {
	names, err := s.parseNames(input.Names)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrPlayerNameRequired
	}
	if len(names) > maxBulkPlayers {
		return nil, fmt.Errorf("%w: at most %d players can be added at once, got %d", ErrValidationFailed, maxBulkPlayers, len(names))
	}
	if err := s.checkTeam(ctx, tournamentID, input.TeamID); err != nil {
		return nil, err
	}

	batch := make([]*models.Player, len(names))
	for i, name := range names {
		batch[i] = &models.Player{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			TeamID:       input.TeamID,
			Name:         name,
			Status:       models.PlayerActive,
		}
	}
	if err := s.playerRepo.CreateBatch(ctx, batch); err != nil {
		return nil, handleRepositoryError(err, "failed to add players")
	}

	players := make([]models.Player, len(batch))
	for i, p := range batch {
		players[i] = *p
	}
	return players, nil
}

func (s *teamService) UpdatePlayer(ctx context.Context, playerID string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get player")
	}

	if input.Name != nil {
		name := cleanName(*input.Name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = name
	}
	if input.Status != nil {
		if *input.Status != models.PlayerActive && *input.Status != models.PlayerInactive {
			return nil, fmt.Errorf("%w: unknown player status %q", ErrValidationFailed, *input.Status)
		}
		player.Status = *input.Status
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, handleRepositoryError(err, "failed to update player")
	}
	return player, nil
}

func (s *teamService) MovePlayer(ctx context.Context, playerID string, teamID *string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get player")
	}
	if err := s.checkTeam(ctx, player.TournamentID, teamID); err != nil {
		return nil, err
	}
	if err := s.playerRepo.Move(ctx, playerID, teamID); err != nil {
		return nil, handleRepositoryError(err, "failed to move player")
	}

	moved, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to reload player")
	}
	return moved, nil
}

func (s *teamService) RemovePlayer(ctx context.Context, playerID string) error {
	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		return handleRepositoryError(err, "failed to remove player")
	}
	return nil
}

// SearchPlayers ranks the tournament's players by fuzzy match of their name, closest first.
func (s *teamService) SearchPlayers(ctx context.Context, tournamentID, query string) ([]models.Player, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament")
	}
	players, err := s.playerRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return players, nil
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	ranks := fuzzy.RankFindFold(query, names)
	sort.Stable(ranks)

	found := make([]models.Player, 0, len(ranks))
	for _, r := range ranks {
		found = append(found, players[r.OriginalIndex])
	}
	return found, nil
}
