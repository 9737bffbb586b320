package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/party-tournament/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerRefsInvalid = errors.New("player references a missing tournament or team")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	CreateBatch(ctx context.Context, players []*models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	// ListByTournament returns every player of the tournament ordered by team and roster position.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	// Move assigns the player to teamID (nil for the pool) at the end of that roster.
	Move(ctx context.Context, id string, teamID *string) error
	Delete(ctx context.Context, id string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Position is the next free slot of the player's roster (or of the pool when team_id is NULL).
const insertPlayerQuery = `
	INSERT INTO players (id, tournament_id, team_id, name, status, position)
	VALUES ($1, $2, $3, $4, $5, (
		SELECT COALESCE(MAX(position) + 1, 0) FROM players
		WHERE tournament_id = $2 AND team_id IS NOT DISTINCT FROM $3
	))
	RETURNING position, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, insertPlayerQuery, p.ID, p.TournamentID, p.TeamID, p.Name, p.Status).
		Scan(&p.Position, &p.CreatedAt)
	if err != nil {
		if code, _ := pqCode(err); code == pqForeignKeyViolation {
			return ErrPlayerRefsInvalid
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) CreateBatch(ctx context.Context, players []*models.Player) (err error) {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBatch failed to begin transaction: %w", err)
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

	for _, p := range players {
		if err = r.Create(ctx, tx, p); err != nil {
			return fmt.Errorf("CreateBatch failed for player %q: %w", p.Name, err)
		}
	}
	return nil
}

const playerColumns = `id, tournament_id, team_id, name, status, position, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }, p *models.Player) error {
	var teamID sql.NullString
	if err := row.Scan(&p.ID, &p.TournamentID, &teamID, &p.Name, &p.Status, &p.Position, &p.CreatedAt); err != nil {
		return err
	}
	p.TeamID = nil
	if teamID.Valid {
		id := teamID.String
		p.TeamID = &id
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	var p models.Player
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + playerColumns + ` FROM players WHERE tournament_id = $1 ORDER BY team_id NULLS FIRST, position, created_at`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET name = $1, status = $2 WHERE id = $3`, p.Name, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", p.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Move(ctx context.Context, id string, teamID *string) error {
	query := `
		UPDATE players p
		SET team_id = $1, position = (
			SELECT COALESCE(MAX(o.position) + 1, 0) FROM players o
			WHERE o.tournament_id = p.tournament_id AND o.team_id IS NOT DISTINCT FROM $1
		)
		WHERE p.id = $2`

	result, err := r.db.ExecContext(ctx, query, teamID, id)
	if err != nil {
		if code, _ := pqCode(err); code == pqForeignKeyViolation {
			return ErrPlayerRefsInvalid
		}
		return fmt.Errorf("failed to move player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
