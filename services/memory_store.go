package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sugarstop/sugarstop/models"
)

// MemoryStore is the reference Store implementation backed by maps. It is
// used by tests and by deployments that run without a database. Getters
// return copies so callers can never mutate stored state behind the lock.
type MemoryStore struct {
	mu          sync.RWMutex
	clock       Clock
	users       map[uint]models.User
	checkins    map[uint]map[time.Time]models.CheckIn
	enrollments map[uint][]models.ChallengeEnrollment

	nextUserID       uint
	nextCheckInID    uint
	nextEnrollmentID uint
}

// NewMemoryStore builds an empty store that validates dates against clock.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{
		clock:       clock,
		users:       make(map[uint]models.User),
		checkins:    make(map[uint]map[time.Time]models.CheckIn),
		enrollments: make(map[uint][]models.ChallengeEnrollment),
	}
}

// AddUser registers a user, assigning an id when none is set.
func (s *MemoryStore) AddUser(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextUserID++
		u.ID = s.nextUserID
	} else if u.ID > s.nextUserID {
		s.nextUserID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.clock.Now()
	}
	s.users[u.ID] = *u
	return u
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrInvalidUser
	}
	return &u, nil
}

func (s *MemoryStore) UpdateUserStats(ctx context.Context, id uint, snap StreakSnapshot, lastCheckIn time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrInvalidUser
	}
	u.CurrentStreak = snap.Current
	u.LongestStreak = snap.Longest
	u.TotalDays = snap.TotalSuccessDays
	u.TotalSlipUps = snap.Relapses
	if !lastCheckIn.IsZero() {
		t := lastCheckIn
		u.LastCheckInAt = &t
	}
	u.UpdatedAt = s.clock.Now()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) RecordCheckIn(ctx context.Context, userID uint, date time.Time, success bool, note string) (*models.CheckIn, *models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil, ErrInvalidUser
	}
	date = DateOnly(date)
	if date.After(LocalToday(s.clock, user.UTCOffsetMin)) {
		return nil, nil, ErrFutureDate
	}

	days := s.checkins[userID]
	if days == nil {
		days = make(map[time.Time]models.CheckIn)
		s.checkins[userID] = days
	}

	now := s.clock.Now()
	var prev *models.CheckIn
	rec, exists := days[date]
	if exists {
		p := rec
		prev = &p
		rec.Success = success
		if note != "" {
			rec.Note = note
		}
		rec.UpdatedAt = now
	} else {
		s.nextCheckInID++
		rec = models.CheckIn{
			ID:        s.nextCheckInID,
			UserID:    userID,
			Date:      date,
			Success:   success,
			Note:      note,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	days[date] = rec

	out := rec
	return &out, prev, nil
}

func (s *MemoryStore) GetHistory(ctx context.Context, userID uint, from, to time.Time) ([]models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.CheckIn, 0, len(s.checkins[userID]))
	for d, rec := range s.checkins[userID] {
		if !from.IsZero() && d.Before(DateOnly(from)) {
			continue
		}
		if !to.IsZero() && d.After(DateOnly(to)) {
			continue
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	return list, nil
}

func (s *MemoryStore) GetLastCheckIn(ctx context.Context, userID uint) (*models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *models.CheckIn
	for _, rec := range s.checkins[userID] {
		if last == nil || rec.Date.After(last.Date) {
			r := rec
			last = &r
		}
	}
	return last, nil
}

func (s *MemoryStore) ActiveEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.enrollments[userID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Status == models.EnrollmentActive {
			e := list[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) LatestEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.enrollments[userID]
	if len(list) == 0 {
		return nil, nil
	}
	e := list[len(list)-1]
	return &e, nil
}

func (s *MemoryStore) CreateEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEnrollmentID++
	e.ID = s.nextEnrollmentID
	now := s.clock.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.enrollments[e.UserID] = append(s.enrollments[e.UserID], *e)
	return nil
}

func (s *MemoryStore) SaveEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.enrollments[e.UserID]
	for i := range list {
		if list[i].ID == e.ID {
			e.UpdatedAt = s.clock.Now()
			list[i] = *e
			return nil
		}
	}
	return ErrStoreUnavailable
}
