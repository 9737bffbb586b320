package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/repositories"
	"github.com/google/uuid"
)

type GameTypeService interface {
	CreateGameType(ctx context.Context, tournamentID string, input CreateGameTypeInput) (*models.GameType, error)
	UpdateGameType(ctx context.Context, gameTypeID string, input UpdateGameTypeInput) (*models.GameType, error)
	DeleteGameType(ctx context.Context, gameTypeID string) error
	AddStation(ctx context.Context, gameTypeID string, input StationInput) (*models.Station, error)
	RemoveStation(ctx context.Context, gameTypeID, stationID string) error
}

type CreateGameTypeInput struct {
	Name           string             `json:"name"`
	PlayersPerTeam int                `json:"players_per_team"`
	PartnerMode    models.PartnerMode `json:"partner_mode"`
	Stations       []string           `json:"stations"`
}

type UpdateGameTypeInput struct {
	Name           *string             `json:"name"`
	PlayersPerTeam *int                `json:"players_per_team"`
	PartnerMode    *models.PartnerMode `json:"partner_mode"`
}

type StationInput struct {
	Name string `json:"name"`
}

type gameTypeService struct {
	gameTypeRepo repositories.GameTypeRepository
}

func NewGameTypeService(gameTypeRepo repositories.GameTypeRepository) GameTypeService {
	return &gameTypeService{gameTypeRepo: gameTypeRepo}
}

func validateGameType(gt *models.GameType) error {
	if gt.Name == "" {
		return ErrGameTypeNameRequired
	}
	if gt.PlayersPerTeam < 1 {
		return fmt.Errorf("%w: players per team must be at least 1, got %d", ErrValidationFailed, gt.PlayersPerTeam)
	}
	if !models.IsValidPartnerMode(gt.PartnerMode) {
		return fmt.Errorf("%w: unknown partner mode %q", ErrValidationFailed, gt.PartnerMode)
	}
	return nil
}

func (s *gameTypeService) CreateGameType(ctx context.Context, tournamentID string, input CreateGameTypeInput) (*models.GameType, error) {
	gt := &models.GameType{
		ID:             uuid.NewString(),
		TournamentID:   tournamentID,
		Name:           cleanName(input.Name),
		PlayersPerTeam: input.PlayersPerTeam,
		PartnerMode:    input.PartnerMode,
		Stations:       make([]models.Station, 0, len(input.Stations)),
	}
	if err := validateGameType(gt); err != nil {
		return nil, err
	}

	for _, raw := range input.Stations {
		name := cleanName(raw)
		if name == "" {
			return nil, ErrStationNameRequired
		}
		gt.Stations = append(gt.Stations, models.Station{
			ID:         uuid.NewString(),
			GameTypeID: gt.ID,
			Name:       name,
		})
	}

	if err := s.gameTypeRepo.Create(ctx, gt); err != nil {
		return nil, handleRepositoryError(err, "failed to create game type")
	}
	return gt, nil
}

func (s *gameTypeService) UpdateGameType(ctx context.Context, gameTypeID string, input UpdateGameTypeInput) (*models.GameType, error) {
	gt, err := s.gameTypeRepo.GetByID(ctx, gameTypeID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get game type")
	}

	if input.Name != nil {
		gt.Name = cleanName(*input.Name)
	}
	if input.PlayersPerTeam != nil {
		gt.PlayersPerTeam = *input.PlayersPerTeam
	}
	if input.PartnerMode != nil {
		gt.PartnerMode = *input.PartnerMode
	}
	if err := validateGameType(gt); err != nil {
		return nil, err
	}

	if err := s.gameTypeRepo.Update(ctx, gt); err != nil {
		return nil, handleRepositoryError(err, "failed to update game type")
	}
	return gt, nil
}

func (s *gameTypeService) DeleteGameType(ctx context.Context, gameTypeID string) error {
	if err := s.gameTypeRepo.Delete(ctx, gameTypeID); err != nil {
		return handleRepositoryError(err, "failed to delete game type")
	}
	return nil
}

func (s *gameTypeService) AddStation(ctx context.Context, gameTypeID string, input StationInput) (*models.Station, error) {
	name := cleanName(input.Name)
	if name == "" {
		return nil, ErrStationNameRequired
	}

	st := &models.Station{
		ID:         uuid.NewString(),
		GameTypeID: gameTypeID,
		Name:       name,
	}
	if err := s.gameTypeRepo.AddStation(ctx, st); err != nil {
		return nil, handleRepositoryError(err, "failed to add station")
	}
	return st, nil
}

func (s *gameTypeService) RemoveStation(ctx context.Context, gameTypeID, stationID string) error {
	if err := s.gameTypeRepo.DeleteStation(ctx, gameTypeID, stationID); err != nil {
		return handleRepositoryError(err, "failed to remove station")
	}
	return nil
}
