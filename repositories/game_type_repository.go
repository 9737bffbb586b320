package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/party-tournament/models"
)

var (
	ErrGameTypeNotFound     = errors.New("game type not found")
	ErrGameTypeNameConflict = errors.New("game type name already exists in this tournament")
	ErrStationNotFound      = errors.New("station not found")
)

type GameTypeRepository interface {
	// Create inserts the game type and its stations in one transaction.
	Create(ctx context.Context, gameType *models.GameType) error
	GetByID(ctx context.Context, id string) (*models.GameType, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.GameType, error)
	Update(ctx context.Context, gameType *models.GameType) error
	Delete(ctx context.Context, id string) error
	AddStation(ctx context.Context, station *models.Station) error
	DeleteStation(ctx context.Context, gameTypeID, stationID string) error
}

type postgresGameTypeRepository struct {
	db *sql.DB
}

func NewPostgresGameTypeRepository(db *sql.DB) GameTypeRepository {
	return &postgresGameTypeRepository{db: db}
}

func (r *postgresGameTypeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGameTypeRepository) Create(ctx context.Context, gt *models.GameType) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	query := `
		INSERT INTO game_types (id, tournament_id, name, players_per_team, partner_mode, position)
		VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position) + 1, 0) FROM game_types WHERE tournament_id = $2))
		RETURNING position, created_at`
	err = tx.QueryRowContext(ctx, query, gt.ID, gt.TournamentID, gt.Name, gt.PlayersPerTeam, gt.PartnerMode).
		Scan(&gt.Position, &gt.CreatedAt)
	if err != nil {
		if code, constraint := pqCode(err); code == pqUniqueViolation && constraint == "game_types_tournament_name_key" {
			return ErrGameTypeNameConflict
		} else if code == pqForeignKeyViolation {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to create game type: %w", err)
	}

	for i := range gt.Stations {
		st := &gt.Stations[i]
		st.GameTypeID = gt.ID
		st.Position = i
		_, err = tx.ExecContext(ctx, `INSERT INTO stations (id, game_type_id, name, position) VALUES ($1, $2, $3, $4)`,
			st.ID, st.GameTypeID, st.Name, st.Position)
		if err != nil {
			return fmt.Errorf("failed to create station %q: %w", st.Name, err)
		}
	}
	return nil
}

func (r *postgresGameTypeRepository) GetByID(ctx context.Context, id string) (*models.GameType, error) {
	query := `SELECT id, tournament_id, name, players_per_team, partner_mode, position, created_at FROM game_types WHERE id = $1`

	var gt models.GameType
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&gt.ID, &gt.TournamentID, &gt.Name, &gt.PlayersPerTeam, &gt.PartnerMode, &gt.Position, &gt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameTypeNotFound
		}
		return nil, fmt.Errorf("failed to get game type %s: %w", id, err)
	}

	stations, err := r.listStations(ctx, r.db, `WHERE s.game_type_id = $1`, id)
	if err != nil {
		return nil, err
	}
	gt.Stations = stations[id]
	if gt.Stations == nil {
		gt.Stations = []models.Station{}
	}
	return &gt, nil
}

func (r *postgresGameTypeRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.GameType, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, name, players_per_team, partner_mode, position, created_at
		FROM game_types WHERE tournament_id = $1 ORDER BY position, created_at`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game types for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	gameTypes := make([]models.GameType, 0)
	for rows.Next() {
		var gt models.GameType
		if err := rows.Scan(&gt.ID, &gt.TournamentID, &gt.Name, &gt.PlayersPerTeam, &gt.PartnerMode, &gt.Position, &gt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game type: %w", err)
		}
		gameTypes = append(gameTypes, gt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Rows must be closed before the next query when executor is a transaction.
	rows.Close()

	stations, err := r.listStations(ctx, executor, `JOIN game_types g ON g.id = s.game_type_id WHERE g.tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	for i := range gameTypes {
		gameTypes[i].Stations = stations[gameTypes[i].ID]
		if gameTypes[i].Stations == nil {
			gameTypes[i].Stations = []models.Station{}
		}
	}
	return gameTypes, nil
}

// listStations groups stations by game type ID, each group in position order.
func (r *postgresGameTypeRepository) listStations(ctx context.Context, executor SQLExecutor, where string, arg string) (map[string][]models.Station, error) {
	query := `SELECT s.id, s.game_type_id, s.name, s.position FROM stations s ` + where + ` ORDER BY s.game_type_id, s.position`

	rows, err := executor.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	byType := make(map[string][]models.Station)
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.GameTypeID, &st.Name, &st.Position); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		byType[st.GameTypeID] = append(byType[st.GameTypeID], st)
	}
	return byType, rows.Err()
}

func (r *postgresGameTypeRepository) Update(ctx context.Context, gt *models.GameType) error {
	query := `UPDATE game_types SET name = $1, players_per_team = $2, partner_mode = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, gt.Name, gt.PlayersPerTeam, gt.PartnerMode, gt.ID)
	if err != nil {
		if code, constraint := pqCode(err); code == pqUniqueViolation && constraint == "game_types_tournament_name_key" {
			return ErrGameTypeNameConflict
		}
		return fmt.Errorf("failed to update game type %s: %w", gt.ID, err)
	}
	return checkAffectedRows(result, ErrGameTypeNotFound)
}

func (r *postgresGameTypeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM game_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game type %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameTypeNotFound)
}

func (r *postgresGameTypeRepository) AddStation(ctx context.Context, st *models.Station) error {
	query := `
		INSERT INTO stations (id, game_type_id, name, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM stations WHERE game_type_id = $2))
		RETURNING position`
	err := r.db.QueryRowContext(ctx, query, st.ID, st.GameTypeID, st.Name).Scan(&st.Position)
	if err != nil {
		if code, _ := pqCode(err); code == pqForeignKeyViolation {
			return ErrGameTypeNotFound
		}
		return fmt.Errorf("failed to add station to game type %s: %w", st.GameTypeID, err)
	}
	return nil
}

func (r *postgresGameTypeRepository) DeleteStation(ctx context.Context, gameTypeID, stationID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1 AND game_type_id = $2`, stationID, gameTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete station %s: %w", stationID, err)
	}
	return checkAffectedRows(result, ErrStationNotFound)
}
