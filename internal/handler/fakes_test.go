package handler

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/vamosjogar/sports-meetup-api/internal/model"
	"github.com/vamosjogar/sports-meetup-api/internal/queue"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
	"github.com/vamosjogar/sports-meetup-api/internal/utils"
)

// memStore is an in-memory stand-in for the activity and enrollment
// repositories. A single mutex serializes every operation, mirroring the
// per-row lock the SQL layer takes, so the seat-count invariant holds under
// concurrent Join calls exactly as it does against MySQL.
type memStore struct {
	mu          sync.Mutex
	nextID      uint64
	activities  map[uint64]*model.Activity
	enrollments map[uint64][]model.Enrollment // activity id -> rows in join order
	names       map[uint64]string             // user id -> display name
	now         func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		activities:  make(map[uint64]*model.Activity),
		enrollments: make(map[uint64][]model.Enrollment),
		names:       make(map[uint64]string),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStore) Create(_ context.Context, a *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	cp := *a
	s.activities[a.ID] = &cp
	return nil
}

func (s *memStore) UpdateByIDAndOwner(_ context.Context, a *model.Activity, ownerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.activities[a.ID]
	if !ok || cur.OwnerID != ownerID {
		return repository.ErrActivityNotFound
	}
	if enrolled := len(s.enrollments[a.ID]); a.Vagas < enrolled {
		return &repository.CapacityBelowEnrolledError{Enrolled: enrolled}
	}
	cur.Esporte = a.Esporte
	cur.Titulo = a.Titulo
	cur.Local = a.Local
	cur.Latitude = a.Latitude
	cur.Longitude = a.Longitude
	cur.DataHora = a.DataHora
	cur.Vagas = a.Vagas
	return nil
}

func (s *memStore) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.activities[id]
	if !ok || cur.OwnerID != ownerID {
		return repository.ErrActivityNotFound
	}
	delete(s.activities, id)
	delete(s.enrollments, id)
	return nil
}

func (s *memStore) ListUpcoming(_ context.Context, esporte string) ([]repository.ActivityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var out []repository.ActivityDetail
	for _, a := range s.activities {
		if a.Expired(now) {
			continue
		}
		if esporte != "" && esporte != "Todos" && a.Esporte != esporte {
			continue
		}
		out = append(out, s.detailLocked(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataHora.Before(out[j].DataHora) })
	return out, nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID uint64) ([]repository.ActivityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.ActivityDetail
	for _, a := range s.activities {
		if a.OwnerID == ownerID {
			out = append(out, s.detailLocked(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataHora.After(out[j].DataHora) })
	return out, nil
}

func (s *memStore) GetDetail(_ context.Context, id uint64) (*repository.ActivityDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, repository.ErrActivityNotFound
	}
	d := s.detailLocked(a)
	return &d, nil
}

func (s *memStore) detailLocked(a *model.Activity) repository.ActivityDetail {
	d := repository.ActivityDetail{
		ID:                 a.ID,
		OwnerID:            a.OwnerID,
		Esporte:            a.Esporte,
		Titulo:             a.Titulo,
		Local:              a.Local,
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		DataHora:           a.DataHora,
		Vagas:              a.Vagas,
		ParticipantesCount: len(s.enrollments[a.ID]),
		CriadorNome:        s.names[a.OwnerID],
	}
	d.VagasDisponiveis = d.Vagas - d.ParticipantesCount
	if d.VagasDisponiveis < 0 {
		d.VagasDisponiveis = 0
	}
	d.Lotada = d.VagasDisponiveis == 0
	return d
}

func (s *memStore) Join(_ context.Context, userID, activityID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[activityID]
	if !ok {
		return 0, repository.ErrActivityNotFound
	}
	if a.Expired(s.now()) {
		return 0, repository.ErrActivityExpired
	}
	if a.OwnerID == userID {
		return 0, repository.ErrOwnActivity
	}
	rows := s.enrollments[activityID]
	for _, e := range rows {
		if e.UserID == userID {
			return 0, repository.ErrAlreadyEnrolled
		}
	}
	if len(rows) >= a.Vagas {
		return 0, repository.ErrActivityFull
	}
	s.enrollments[activityID] = append(rows, model.Enrollment{
		UserID:        userID,
		ActivityID:    activityID,
		DataInscricao: s.now(),
	})
	return a.Vagas - len(rows) - 1, nil
}

func (s *memStore) Leave(_ context.Context, userID, activityID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.enrollments[activityID]
	for i, e := range rows {
		if e.UserID == userID {
			s.enrollments[activityID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotEnrolled
}

func (s *memStore) IsEnrolled(_ context.Context, userID, activityID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments[activityID] {
		if e.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Participants(_ context.Context, activityID uint64) ([]repository.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[activityID]; !ok {
		return nil, repository.ErrActivityNotFound
	}
	out := make([]repository.Participant, 0, len(s.enrollments[activityID]))
	for _, e := range s.enrollments[activityID] {
		out = append(out, repository.Participant{Nome: s.names[e.UserID], DataInscricao: e.DataInscricao})
	}
	return out, nil
}

// memUsers is an in-memory UserStore keyed by lowercase email.
type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byMail map[string]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byMail: make(map[string]model.User)}
}

func (s *memUsers) Create(_ context.Context, nome, email, password string, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byMail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	s.byMail[email] = model.User{ID: s.nextID, Nome: nome, Email: email, PasswordHash: hash}
	return s.nextID, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byMail[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byMail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

// memTokens is an in-memory RefreshTokenStore.
type memTokens struct {
	mu     sync.Mutex
	active map[string]uint64 // token hash -> user id
}

func newMemTokens() *memTokens {
	return &memTokens{active: make(map[string]uint64)}
}

func (s *memTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[tokenHash] = userID
	return nil
}

func (s *memTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.active[tokenHash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (s *memTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, tokenHash)
	return nil
}

func (s *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, uid := range s.active {
		if uid == userID {
			delete(s.active, h)
		}
	}
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.EnrollmentConfirmedEvent
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 8)}
}

func (p *recordingPublisher) PublishEnrollmentConfirmed(_ context.Context, ev queue.EnrollmentConfirmedEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *recordingPublisher) wait(d time.Duration) []queue.EnrollmentConfirmedEvent {
	select {
	case <-p.done:
	case <-time.After(d):
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EnrollmentConfirmedEvent, len(p.events))
	copy(out, p.events)
	return out
}
