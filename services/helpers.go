package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/party-tournament/repositories"
)

// repoErrors maps repository sentinels onto the service ones handlers understand.
var repoErrors = []struct {
	repo    error
	service error
}{
	{repositories.ErrTournamentNotFound, ErrTournamentNotFound},
	{repositories.ErrTournamentNameConflict, ErrTournamentNameConflict},
	{repositories.ErrTeamNotFound, ErrTeamNotFound},
	{repositories.ErrTeamNameConflict, ErrTeamNameConflict},
	{repositories.ErrTeamTournamentInvalid, ErrTournamentNotFound},
	{repositories.ErrPlayerNotFound, ErrPlayerNotFound},
	{repositories.ErrPlayerRefsInvalid, ErrTeamNotFound},
	{repositories.ErrGameTypeNotFound, ErrGameTypeNotFound},
	{repositories.ErrGameTypeNameConflict, ErrGameTypeNameConflict},
	{repositories.ErrStationNotFound, ErrStationNotFound},
	{repositories.ErrRoundNotFound, ErrRoundNotFound},
}

// handleRepositoryError translates known repository errors and wraps the rest with op.
func handleRepositoryError(err error, op string) error {
	if err == nil {
		return nil
	}
	for _, m := range repoErrors {
		if errors.Is(err, m.repo) {
			return m.service
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func cleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
