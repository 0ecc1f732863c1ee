package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sugarstop/sugarstop/models"
)

// Store operations run under a bounded timeout; a slow or broken database
// surfaces as ErrStoreUnavailable instead of hanging the caller.
const defaultStoreTimeout = 5 * time.Second

// GormStore is the database-backed Store used in production.
type GormStore struct {
	db      *gorm.DB
	clock   Clock
	timeout time.Duration
}

// NewGormStore wraps db with date validation against clock.
func NewGormStore(db *gorm.DB, clock Clock) *GormStore {
	return &GormStore{db: db, clock: clock, timeout: defaultStoreTimeout}
}

func (s *GormStore) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	tx, cancel := s.session(ctx)
	defer cancel()

	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidUser
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *GormStore) UpdateUserStats(ctx context.Context, id uint, snap StreakSnapshot, lastCheckIn time.Time) error {
	tx, cancel := s.session(ctx)
	defer cancel()

	updates := map[string]interface{}{
		"current_streak": snap.Current,
		"longest_streak": snap.Longest,
		"total_days":     snap.TotalSuccessDays,
		"total_slip_ups": snap.Relapses,
		"updated_at":     time.Now(),
	}
	if !lastCheckIn.IsZero() {
		updates["last_check_in_at"] = lastCheckIn
	}
	res := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidUser
	}
	return nil
}

func (s *GormStore) RecordCheckIn(ctx context.Context, userID uint, date time.Time, success bool, note string) (*models.CheckIn, *models.CheckIn, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	date = DateOnly(date)
	if date.After(LocalToday(s.clock, user.UTCOffsetMin)) {
		return nil, nil, ErrFutureDate
	}

	tx, cancel := s.session(ctx)
	defer cancel()

	var prev *models.CheckIn
	var existing models.CheckIn
	err = tx.Where("user_id = ? AND date = ?", userID, date).First(&existing).Error
	switch {
	case err == nil:
		prev = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, nil, storeErr(err)
	}

	assignments := map[string]interface{}{
		"success":    success,
		"updated_at": time.Now(),
	}
	if note != "" {
		assignments["note"] = note
	}
	// Atomic upsert on (user_id, date) so concurrent writers for the same
	// day never trip the unique index.
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&models.CheckIn{UserID: userID, Date: date, Success: success, Note: note}).Error
	if err != nil {
		return nil, nil, storeErr(err)
	}

	var rec models.CheckIn
	if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&rec).Error; err != nil {
		return nil, nil, storeErr(err)
	}
	return &rec, prev, nil
}

func (s *GormStore) GetHistory(ctx context.Context, userID uint, from, to time.Time) ([]models.CheckIn, error) {
	tx, cancel := s.session(ctx)
	defer cancel()

	q := tx.Where("user_id = ?", userID)
	if !from.IsZero() {
		q = q.Where("date >= ?", DateOnly(from))
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", DateOnly(to))
	}
	var list []models.CheckIn
	if err := q.Order("date ASC").Find(&list).Error; err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

func (s *GormStore) GetLastCheckIn(ctx context.Context, userID uint) (*models.CheckIn, error) {
	tx, cancel := s.session(ctx)
	defer cancel()

	var rec models.CheckIn
	err := tx.Where("user_id = ?", userID).Order("date DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &rec, nil
}

func (s *GormStore) ActiveEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	tx, cancel := s.session(ctx)
	defer cancel()

	var enr models.ChallengeEnrollment
	err := tx.Where("user_id = ? AND status = ?", userID, models.EnrollmentActive).
		Order("id DESC").First(&enr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &enr, nil
}

func (s *GormStore) LatestEnrollment(ctx context.Context, userID uint) (*models.ChallengeEnrollment, error) {
	tx, cancel := s.session(ctx)
	defer cancel()

	var enr models.ChallengeEnrollment
	err := tx.Where("user_id = ?", userID).Order("id DESC").First(&enr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &enr, nil
}

func (s *GormStore) CreateEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error {
	tx, cancel := s.session(ctx)
	defer cancel()

	if err := tx.Create(e).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *GormStore) SaveEnrollment(ctx context.Context, e *models.ChallengeEnrollment) error {
	tx, cancel := s.session(ctx)
	defer cancel()

	if err := tx.Save(e).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
