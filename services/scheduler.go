package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sugarstop/sugarstop/models"
)

const notifyConcurrency = 8

// SchedulerConfig fixes when the background jobs fire. The zone is the
// product's home zone; users who configured their own day boundary still get
// "did you check in today" evaluated against their own offset.
type SchedulerConfig struct {
	ReminderHour   int
	ReminderMinute int
	TaskWeekday    time.Weekday
	TaskHour       int
	TaskMinute     int
	Zone           *time.Location
}

// DefaultSchedulerConfig reminds at 19:00 and issues tasks Monday 07:00 in
// UTC+6, the zone the product launched in.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ReminderHour: 19,
		TaskWeekday:  time.Monday,
		TaskHour:     7,
		Zone:         time.FixedZone("UTC+6", 6*60*60),
	}
}

// Scheduler runs the daily reminder sweep and the weekly task issue in the
// background. Both jobs are best-effort: a user whose send fails is logged
// and skipped, never retried within the run.
type Scheduler struct {
	db       *gorm.DB
	checkins CheckInStore
	tasks    *TaskService
	notifier Notifier
	clock    Clock
	cfg      SchedulerConfig
	log      *zap.Logger
	stop     chan struct{}
}

func NewScheduler(db *gorm.DB, checkins CheckInStore, tasks *TaskService, notifier Notifier, clock Clock, cfg SchedulerConfig, log *zap.Logger) *Scheduler {
	if cfg.Zone == nil {
		cfg.Zone = time.FixedZone("UTC+6", 6*60*60)
	}
	return &Scheduler{
		db:       db,
		checkins: checkins,
		tasks:    tasks,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start launches the scheduler loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop ends the loop; safe to call once.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) run() {
	for {
		now := s.clock.Now().In(s.cfg.Zone)
		nextReminder := nextDaily(now, s.cfg.ReminderHour, s.cfg.ReminderMinute)
		nextTask := nextWeekly(now, s.cfg.TaskWeekday, s.cfg.TaskHour, s.cfg.TaskMinute)

		next, job := nextReminder, "reminder"
		if nextTask.Before(nextReminder) {
			next, job = nextTask, "weekly_task"
		}
		s.log.Info("scheduler sleeping",
			zap.String("job", job),
			zap.Time("fire_at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		var err error
		if job == "reminder" {
			err = s.RunReminders(ctx)
		} else {
			err = s.RunWeeklyTasks(ctx)
		}
		cancel()
		if err != nil {
			s.log.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
		}
	}
}

// nextDaily returns the next occurrence of hh:mm after now, in now's zone.
func nextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekly returns the next occurrence of weekday hh:mm after now.
func nextWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// RunReminders nudges every user with reminders enabled who has no check-in
// for their current local day.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	var users []models.User
	err := s.db.WithContext(ctx).Where("reminders_on = ?", true).Find(&users).Error
	if err != nil {
		return storeErr(err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(notifyConcurrency)
	var sent atomic.Int64
	for i := range users {
		user := users[i]
		g.Go(func() error {
			today := LocalToday(s.clock, user.UTCOffsetMin)
			last, err := s.checkins.GetLastCheckIn(ctx, user.ID)
			if err != nil {
				s.log.Warn("reminder lookup failed", zap.Uint("user_id", user.ID), zap.Error(err))
				return nil
			}
			if last != nil && SameDay(last.Date, today) {
				return nil
			}
			text := fmt.Sprintf(
				"🔔 Напоминание о чек-ине!\n\nНе забудь отметить свой прогресс за сегодня.\n\n🔥 Текущая серия: %d дней\n🏆 Лучшая серия: %d дней",
				user.CurrentStreak, user.LongestStreak)
			if err := s.notifier.Notify(ctx, &user, text); err != nil {
				s.log.Warn("reminder send failed", zap.Uint("user_id", user.ID), zap.Error(err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("reminder sweep finished", zap.Int("users", len(users)), zap.Int64("sent", sent.Load()))
	return nil
}

// RunWeeklyTasks generates one task text and issues it to every user with
// reminders enabled, notifying each of them.
func (s *Scheduler) RunWeeklyTasks(ctx context.Context) error {
	var users []models.User
	err := s.db.WithContext(ctx).Where("reminders_on = ?", true).Find(&users).Error
	if err != nil {
		return storeErr(err)
	}
	if len(users) == 0 {
		return nil
	}

	text := s.tasks.GenerateText(ctx)
	issueDate := DateOnly(s.clock.Now().In(s.cfg.Zone))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(notifyConcurrency)
	for i := range users {
		user := users[i]
		g.Go(func() error {
			if err := s.tasks.Issue(ctx, user.ID, issueDate, text); err != nil {
				s.log.Warn("task issue failed", zap.Uint("user_id", user.ID), zap.Error(err))
				return nil
			}
			msg := fmt.Sprintf("🎯 Новый недельный челлендж!\n\n%s\n\n🔥 Твоя текущая серия: %d дней", text, user.CurrentStreak)
			if err := s.notifier.Notify(ctx, &user, msg); err != nil {
				s.log.Warn("task notify failed", zap.Uint("user_id", user.ID), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("weekly tasks issued", zap.Int("users", len(users)), zap.String("date", issueDate.Format("2006-01-02")))
	return nil
}
