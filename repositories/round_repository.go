package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/party-tournament/models"
)

var ErrRoundNotFound = errors.New("round not found")

// RoundRepository stores each generated round as one JSONB document.
// Documents are written verbatim so player snapshots survive roster edits.
type RoundRepository interface {
	ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, rounds []models.Round) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Round, error)
	Update(ctx context.Context, exec SQLExecutor, tournamentID string, round models.Round) error
	DeleteAll(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, rounds []models.Round) error {
	executor := r.getExecutor(exec)

	if err := r.DeleteAll(ctx, executor, tournamentID); err != nil {
		return err
	}

	for _, round := range rounds {
		payload, err := json.Marshal(round)
		if err != nil {
			return fmt.Errorf("failed to encode round %d: %w", round.Round, err)
		}
		_, err = executor.ExecContext(ctx,
			`INSERT INTO rounds (tournament_id, round_number, payload) VALUES ($1, $2, $3)`,
			tournamentID, round.Round, payload)
		if err != nil {
			if code, _ := pqCode(err); code == pqForeignKeyViolation {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to insert round %d: %w", round.Round, err)
		}
	}
	return nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Round, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT payload FROM rounds WHERE tournament_id = $1 ORDER BY round_number`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		var round models.Round
		if err := json.Unmarshal(payload, &round); err != nil {
			return nil, fmt.Errorf("failed to decode round payload: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *postgresRoundRepository) Update(ctx context.Context, exec SQLExecutor, tournamentID string, round models.Round) error {
	executor := r.getExecutor(exec)
	payload, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to encode round %d: %w", round.Round, err)
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET payload = $1 WHERE tournament_id = $2 AND round_number = $3`,
		payload, tournamentID, round.Round)
	if err != nil {
		return fmt.Errorf("failed to update round %d: %w", round.Round, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) DeleteAll(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM rounds WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete rounds for tournament %s: %w", tournamentID, err)
	}
	return nil
}
