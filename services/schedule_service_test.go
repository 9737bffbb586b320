package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/party-tournament/broadcast"
	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleFixture struct {
	*fixture
	hub      *fakeBroadcaster
	uploader *fakeUploader
	schedule ScheduleService
}

func newScheduleFixture(seed int64) *scheduleFixture {
	f := newFixture()
	hub := &fakeBroadcaster{}
	uploader := newFakeUploader()
	svc := NewScheduleService(f.repos.tx, f.repos.tournaments, f.repos.rounds, f.tournaments, hub, ScheduleServiceConfig{
		Seed:     &seed,
		Archiver: NewScheduleArchiver(uploader),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &scheduleFixture{fixture: f, hub: hub, uploader: uploader, schedule: svc}
}

func TestValidate_ReportsSummary(t *testing.T) {
	f := newScheduleFixture(1)
	tour := f.seedTournament(t, 3, 4, 2, 2)

	result, err := f.schedule.Validate(context.Background(), tour.ID)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 4, result.Summary.Teams)
	assert.Equal(t, 8, result.Summary.TotalPlayers)
	assert.Equal(t, 2, result.Summary.TotalStations)
}

func TestGenerate_PersistsAndBroadcasts(t *testing.T) {
	f := newScheduleFixture(7)
	ctx := context.Background()
	tour := f.seedTournament(t, 3, 4, 2, 2)

	rounds, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	for _, r := range rounds {
		assert.Len(t, r.Games, 2)
		assert.Len(t, r.Resting, 4)
		assert.Equal(t, 15, r.Timer.DurationMinutes)
	}

	full, err := f.tournaments.GetFull(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, full.Status)
	assert.Equal(t, rounds, full.Schedule)
	assert.Contains(t, f.repos.store.locked, tour.ID)

	msgs := f.hub.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, broadcast.RoomForTournament(tour.ID), msgs[0].room)
	msg, ok := msgs[0].message.(broadcast.Message)
	require.True(t, ok)
	assert.Equal(t, broadcast.EventScheduleUpdated, msg.Type)

	assert.Len(t, f.uploader.objects, 1)
}

func TestGenerate_RefusesSecondTimeButRescheduleReplaces(t *testing.T) {
	f := newScheduleFixture(3)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 2, 2, 1)

	_, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)

	_, err = f.schedule.Generate(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrScheduleExists)

	rounds, err := f.schedule.Reschedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 2)
}

func TestGenerate_ReadsSnapshotInsideTransaction(t *testing.T) {
	for _, replace := range []bool{false, true} {
		f := newScheduleFixture(3)
		ctx := context.Background()
		tour := f.seedTournament(t, 2, 2, 2, 1)
		if replace {
			_, err := f.schedule.Generate(ctx, tour.ID)
			require.NoError(t, err)
		}
		f.repos.store.takeReads()

		var err error
		if replace {
			_, err = f.schedule.Reschedule(ctx, tour.ID)
		} else {
			_, err = f.schedule.Generate(ctx, tour.ID)
		}
		require.NoError(t, err)

		reads := f.repos.store.takeReads()
		seen := make(map[string]bool)
		for _, r := range reads {
			assert.True(t, r.inTx, "%s read outside the transaction (replace=%v)", r.table, replace)
			seen[r.table] = true
		}
		for _, table := range []string{"teams", "players", "game_types", "rounds"} {
			assert.True(t, seen[table], "%s not read (replace=%v)", table, replace)
		}
	}
}

func TestGenerate_SeesRosterChangesMadeBeforeTheLock(t *testing.T) {
	f := newScheduleFixture(5)
	ctx := context.Background()
	tour := f.seedTournament(t, 1, 2, 2, 1)

	// A third team with a different roster size makes the setup invalid.
	team, err := f.teams.CreateTeam(ctx, tour.ID, TeamInput{Name: "Late Team"})
	require.NoError(t, err)
	_, err = f.teams.AddPlayer(ctx, tour.ID, AddPlayerInput{Name: "Solo", TeamID: &team.ID})
	require.NoError(t, err)

	_, err = f.schedule.Generate(ctx, tour.ID)

	assert.True(t, errors.Is(err, scheduler.ErrInvalidSetup))
}

func TestGenerate_InvalidSetupCarriesResult(t *testing.T) {
	f := newScheduleFixture(1)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 1, 2, 1)

	_, err := f.schedule.Generate(ctx, tour.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, scheduler.ErrInvalidSetup))
	var setupErr *scheduler.SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.False(t, setupErr.Result.Valid)
	assert.NotEmpty(t, setupErr.Result.Errors)

	schedule, err := f.schedule.GetSchedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, schedule)
	assert.Empty(t, f.hub.all())
}

func TestGenerate_ReproducibleWithSeed(t *testing.T) {
	a := newScheduleFixture(99)
	b := newScheduleFixture(99)
	tourA := a.seedTournament(t, 4, 4, 2, 2)
	tourB := b.seedTournament(t, 4, 4, 2, 2)

	previewA, err := a.schedule.Preview(context.Background(), tourA.ID)
	require.NoError(t, err)
	previewB, err := b.schedule.Preview(context.Background(), tourB.ID)
	require.NoError(t, err)

	require.Len(t, previewA, len(previewB))
	for i := range previewA {
		require.Len(t, previewA[i].Games, len(previewB[i].Games))
		for j := range previewA[i].Games {
			assert.Equal(t, namesOf(previewA[i].Games[j]), namesOf(previewB[i].Games[j]))
		}
	}
}

func namesOf(g models.Game) []string {
	names := []string{g.StationName}
	for _, p := range g.Team1Players {
		names = append(names, p.PlayerName)
	}
	for _, p := range g.Team2Players {
		names = append(names, p.PlayerName)
	}
	return names
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newScheduleFixture(5)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 2, 2, 1)

	rounds, err := f.schedule.Preview(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 2)

	stored, err := f.schedule.GetSchedule(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, f.hub.all())
}

func TestRecordResult_CompletesTournament(t *testing.T) {
	f := newScheduleFixture(11)
	ctx := context.Background()
	tour := f.seedTournament(t, 1, 2, 1, 1)

	rounds, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, rounds[0].Games, 1)
	game := rounds[0].Games[0]

	got, err := f.schedule.RecordResult(ctx, tour.ID, 1, game.ID, RecordResultInput{
		Winner:     models.WinnerTeam1,
		Team1Score: intPtr(21),
		Team2Score: intPtr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, models.GameCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, models.WinnerTeam1, got.Result.Winner)

	full, err := f.tournaments.GetFull(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, full.Status)

	msgs := f.hub.all()
	last, ok := msgs[len(msgs)-1].message.(broadcast.Message)
	require.True(t, ok)
	assert.Equal(t, broadcast.EventGameUpdated, last.Type)

	standings, err := f.schedule.Standings(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, game.Team1Players[0].TeamID, standings[0].TeamID)
	assert.Equal(t, 3, standings[0].Points)
	assert.Equal(t, 6, standings[0].ScoreDifference)
}

func TestRecordResult_Errors(t *testing.T) {
	f := newScheduleFixture(2)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 2, 1, 1)

	_, err := f.schedule.RecordResult(ctx, tour.ID, 1, "g", RecordResultInput{Winner: models.WinnerDraw})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	rounds, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)
	gameID := rounds[0].Games[0].ID

	_, err = f.schedule.RecordResult(ctx, tour.ID, 1, gameID, RecordResultInput{Winner: "nobody"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.schedule.RecordResult(ctx, tour.ID, 1, gameID, RecordResultInput{Winner: models.WinnerDraw, Team1Score: intPtr(-1)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.schedule.RecordResult(ctx, tour.ID, 9, gameID, RecordResultInput{Winner: models.WinnerDraw})
	assert.ErrorIs(t, err, ErrRoundNotFound)

	_, err = f.schedule.RecordResult(ctx, tour.ID, 1, "missing", RecordResultInput{Winner: models.WinnerDraw})
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = f.schedule.RecordResult(ctx, "missing", 1, gameID, RecordResultInput{Winner: models.WinnerDraw})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestReset_ClearsResultsKeepsPairings(t *testing.T) {
	f := newScheduleFixture(4)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 2, 1, 1)

	rounds, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)
	_, err = f.schedule.RecordResult(ctx, tour.ID, 1, rounds[0].Games[0].ID, RecordResultInput{Winner: models.WinnerTeam2})
	require.NoError(t, err)

	reset, err := f.schedule.Reset(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, rounds, reset)
	for _, r := range reset {
		for _, g := range r.Games {
			assert.Equal(t, models.GamePending, g.Status)
			assert.Nil(t, g.Result)
		}
	}
}

func TestClearSchedule(t *testing.T) {
	f := newScheduleFixture(4)
	ctx := context.Background()
	tour := f.seedTournament(t, 2, 2, 1, 1)

	_, err := f.schedule.Reset(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)
	require.NoError(t, f.schedule.ClearSchedule(ctx, tour.ID))

	full, err := f.tournaments.GetFull(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSetup, full.Status)
	assert.Empty(t, full.Schedule)

	_, err = f.schedule.Generate(ctx, tour.ID)
	assert.NoError(t, err)
}

func TestPlayerStats_CountsGamesAndRests(t *testing.T) {
	f := newScheduleFixture(8)
	ctx := context.Background()
	tour := f.seedTournament(t, 4, 2, 2, 1)

	_, err := f.schedule.Generate(ctx, tour.ID)
	require.NoError(t, err)

	stats, err := f.schedule.PlayerStats(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	for _, s := range stats {
		assert.Equal(t, 4, s.GamesPlayed+s.Rested, s.PlayerName)
	}
}

func TestGenerate_ArchiveFailureDoesNotFail(t *testing.T) {
	f := newScheduleFixture(6)
	f.uploader.err = errors.New("bucket unavailable")
	tour := f.seedTournament(t, 1, 2, 1, 1)

	rounds, err := f.schedule.Generate(context.Background(), tour.ID)

	require.NoError(t, err)
	assert.Len(t, rounds, 1)
}
