package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/party-tournament/models"
	"github.com/Dosada05/party-tournament/repositories"
	"github.com/Dosada05/party-tournament/storage"
)

// memStore backs every in-memory repository used by the service tests.
type memStore struct {
	mu          sync.Mutex
	tournaments map[string]models.Tournament
	teams       map[string]models.Team
	players     map[string]models.Player
	gameTypes   map[string]models.GameType
	rounds      map[string][]byte
	clock       int
	locked      []string
	reads       []memRead
}

// memRead records which list query ran and whether it went through a transaction.
type memRead struct {
	table string
	inTx  bool
}

// recordRead must be called with m.mu held.
func (m *memStore) recordRead(table string, exec repositories.SQLExecutor) {
	_, inTx := exec.(*memTx)
	m.reads = append(m.reads, memRead{table: table, inTx: inTx})
}

func (m *memStore) takeReads() []memRead {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.reads
	m.reads = nil
	return out
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[string]models.Tournament),
		teams:       make(map[string]models.Team),
		players:     make(map[string]models.Player),
		gameTypes:   make(map[string]models.GameType),
		rounds:      make(map[string][]byte),
	}
}

func (m *memStore) tick() time.Time {
	m.clock++
	return time.Date(2026, 1, 1, 0, 0, m.clock, 0, time.UTC)
}

type repos struct {
	store       *memStore
	tournaments *memTournamentRepo
	teams       *memTeamRepo
	players     *memPlayerRepo
	gameTypes   *memGameTypeRepo
	rounds      *memRoundRepo
	tx          *memTransactor
}

func newRepos() *repos {
	s := newMemStore()
	return &repos{
		store:       s,
		tournaments: &memTournamentRepo{s},
		teams:       &memTeamRepo{s},
		players:     &memPlayerRepo{s},
		gameTypes:   &memGameTypeRepo{s},
		rounds:      &memRoundRepo{s},
		tx:          &memTransactor{},
	}
}

// memTx stands in for *sql.Tx. The in-memory repositories never call its methods.
type memTx struct {
	repositories.SQLExecutor
}

type memTransactor struct {
	calls int
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(&memTx{})
}

type memTournamentRepo struct{ s *memStore }

func (r *memTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.tournaments {
		if other.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.tournaments[t.ID] = models.Tournament{
		ID: t.ID, Name: t.Name, Status: t.Status, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		Settings: models.Settings{Rounds: t.Settings.Rounds, RoundDurationMinutes: t.Settings.RoundDurationMinutes},
	}
	return nil
}

func (r *memTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *memTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = out[:0]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	stored.Name = t.Name
	stored.Settings.Rounds = t.Settings.Rounds
	stored.Settings.RoundDurationMinutes = t.Settings.RoundDurationMinutes
	stored.UpdatedAt = r.s.tick()
	t.UpdatedAt = stored.UpdatedAt
	r.s.tournaments[t.ID] = stored
	return nil
}

func (r *memTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	stored.Status = status
	r.s.tournaments[id] = stored
	return nil
}

func (r *memTournamentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	return nil
}

func (r *memTournamentRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Tournament, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	r.s.locked = append(r.s.locked, id)
	r.s.mu.Unlock()
	return t, nil
}

type memTeamRepo struct{ s *memStore }

func (r *memTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[team.TournamentID]; !ok {
		return repositories.ErrTeamTournamentInvalid
	}
	for _, other := range r.s.teams {
		if other.TournamentID == team.TournamentID && other.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.CreatedAt = r.s.tick()
	stored := *team
	stored.Players = nil
	r.s.teams[team.ID] = stored
	return nil
}

func (r *memTeamRepo) GetByID(ctx context.Context, id string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r *memTeamRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordRead("teams", exec)
	out := make([]models.Team, 0)
	for _, team := range r.s.teams {
		if team.TournamentID == tournamentID {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memTeamRepo) Update(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.teams[team.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	stored.Name = team.Name
	r.s.teams[team.ID] = stored
	return nil
}

func (r *memTeamRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.s.teams, id)
	for pid, p := range r.s.players {
		if p.TeamID != nil && *p.TeamID == id {
			p.TeamID = nil
			r.s.players[pid] = p
		}
	}
	return nil
}

type memPlayerRepo struct{ s *memStore }

func (r *memPlayerRepo) nextPosition(tournamentID string, teamID *string) int {
	next := 0
	for _, p := range r.s.players {
		if p.TournamentID != tournamentID || !sameTeam(p.TeamID, teamID) {
			continue
		}
		if p.Position >= next {
			next = p.Position + 1
		}
	}
	return next
}

func sameTeam(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[p.TournamentID]; !ok {
		return repositories.ErrPlayerRefsInvalid
	}
	if p.TeamID != nil {
		if _, ok := r.s.teams[*p.TeamID]; !ok {
			return repositories.ErrPlayerRefsInvalid
		}
	}
	p.Position = r.nextPosition(p.TournamentID, p.TeamID)
	p.CreatedAt = r.s.tick()
	r.s.players[p.ID] = *p
	return nil
}

func (r *memPlayerRepo) CreateBatch(ctx context.Context, players []*models.Player) error {
	for _, p := range players {
		if err := r.Create(ctx, nil, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *memPlayerRepo) GetByID(ctx context.Context, id string) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *memPlayerRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordRead("players", exec)
	out := make([]models.Player, 0)
	for _, p := range r.s.players {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := "", ""
		if out[i].TeamID != nil {
			ti = *out[i].TeamID
		}
		if out[j].TeamID != nil {
			tj = *out[j].TeamID
		}
		if ti != tj {
			return ti < tj
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *memPlayerRepo) Update(ctx context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.players[p.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	stored.Name = p.Name
	stored.Status = p.Status
	r.s.players[p.ID] = stored
	return nil
}

func (r *memPlayerRepo) Move(ctx context.Context, id string, teamID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if teamID != nil {
		if _, ok := r.s.teams[*teamID]; !ok {
			return repositories.ErrPlayerRefsInvalid
		}
	}
	stored.Position = r.nextPosition(stored.TournamentID, teamID)
	stored.TeamID = teamID
	r.s.players[id] = stored
	return nil
}

func (r *memPlayerRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.s.players, id)
	return nil
}

type memGameTypeRepo struct{ s *memStore }

func (r *memGameTypeRepo) Create(ctx context.Context, gt *models.GameType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[gt.TournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, other := range r.s.gameTypes {
		if other.TournamentID == gt.TournamentID && other.Name == gt.Name {
			return repositories.ErrGameTypeNameConflict
		}
	}
	gt.CreatedAt = r.s.tick()
	gt.Position = len(r.s.gameTypes)
	for i := range gt.Stations {
		gt.Stations[i].Position = i
	}
	stored := *gt
	stored.Stations = append([]models.Station(nil), gt.Stations...)
	r.s.gameTypes[gt.ID] = stored
	return nil
}

func (r *memGameTypeRepo) GetByID(ctx context.Context, id string) (*models.GameType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gt, ok := r.s.gameTypes[id]
	if !ok {
		return nil, repositories.ErrGameTypeNotFound
	}
	gt.Stations = append([]models.Station{}, gt.Stations...)
	return &gt, nil
}

func (r *memGameTypeRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.GameType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordRead("game_types", exec)
	out := make([]models.GameType, 0)
	for _, gt := range r.s.gameTypes {
		if gt.TournamentID == tournamentID {
			gt.Stations = append([]models.Station{}, gt.Stations...)
			out = append(out, gt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memGameTypeRepo) Update(ctx context.Context, gt *models.GameType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.gameTypes[gt.ID]
	if !ok {
		return repositories.ErrGameTypeNotFound
	}
	stored.Name = gt.Name
	stored.PlayersPerTeam = gt.PlayersPerTeam
	stored.PartnerMode = gt.PartnerMode
	r.s.gameTypes[gt.ID] = stored
	return nil
}

func (r *memGameTypeRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.gameTypes[id]; !ok {
		return repositories.ErrGameTypeNotFound
	}
	delete(r.s.gameTypes, id)
	return nil
}

func (r *memGameTypeRepo) AddStation(ctx context.Context, st *models.Station) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gt, ok := r.s.gameTypes[st.GameTypeID]
	if !ok {
		return repositories.ErrGameTypeNotFound
	}
	st.Position = len(gt.Stations)
	gt.Stations = append(gt.Stations, *st)
	r.s.gameTypes[gt.ID] = gt
	return nil
}

func (r *memGameTypeRepo) DeleteStation(ctx context.Context, gameTypeID, stationID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	gt, ok := r.s.gameTypes[gameTypeID]
	if !ok {
		return repositories.ErrStationNotFound
	}
	for i, st := range gt.Stations {
		if st.ID == stationID {
			gt.Stations = append(gt.Stations[:i:i], gt.Stations[i+1:]...)
			r.s.gameTypes[gameTypeID] = gt
			return nil
		}
	}
	return repositories.ErrStationNotFound
}

// memRoundRepo keeps rounds JSON-encoded, like the JSONB column does.
type memRoundRepo struct{ s *memStore }

func (r *memRoundRepo) ReplaceAll(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, rounds []models.Round) error {
	payload, err := json.Marshal(rounds)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(rounds) == 0 {
		delete(r.s.rounds, tournamentID)
		return nil
	}
	r.s.rounds[tournamentID] = payload
	return nil
}

func (r *memRoundRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.Round, error) {
	r.s.mu.Lock()
	r.s.recordRead("rounds", exec)
	payload, ok := r.s.rounds[tournamentID]
	r.s.mu.Unlock()
	rounds := make([]models.Round, 0)
	if !ok {
		return rounds, nil
	}
	if err := json.Unmarshal(payload, &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *memRoundRepo) Update(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, round models.Round) error {
	rounds, err := r.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return err
	}
	for i := range rounds {
		if rounds[i].Round == round.Round {
			rounds[i] = round
			return r.ReplaceAll(ctx, exec, tournamentID, rounds)
		}
	}
	return repositories.ErrRoundNotFound
}

func (r *memRoundRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rounds, tournamentID)
	return nil
}

type recordedMessage struct {
	room    string
	message interface{}
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, recordedMessage{room: roomID, message: message})
}

func (b *fakeBroadcaster) all() []recordedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedMessage(nil), b.messages...)
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
