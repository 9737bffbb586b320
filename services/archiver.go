package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/storage"
)

// ScheduleArchiver uploads a JSON snapshot of every committed schedule.
type ScheduleArchiver struct {
	uploader storage.FileUploader
	now      func() time.Time
}

func NewScheduleArchiver(uploader storage.FileUploader) *ScheduleArchiver {
	return &ScheduleArchiver{uploader: uploader, now: time.Now}
}

type scheduleSnapshot struct {
	TournamentID string         `json:"tournament_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Rounds       []models.Round `json:"rounds"`
}

func archiveKey(tournamentID string, at time.Time) string {
	return fmt.Sprintf("tournaments/%s/schedule-%d.json", tournamentID, at.Unix())
}

func (a *ScheduleArchiver) Archive(ctx context.Context, tournamentID string, rounds []models.Round) (*storage.UploadResult, error) {
	at := a.now().UTC()
	body, err := json.Marshal(scheduleSnapshot{
		TournamentID: tournamentID,
		GeneratedAt:  at,
		Rounds:       rounds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule snapshot: %w", err)
	}

	result, err := a.uploader.Upload(ctx, archiveKey(tournamentID, at), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to archive schedule of tournament %s: %w", tournamentID, err)
	}
	return result, nil
}
