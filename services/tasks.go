package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sugarstop/sugarstop/models"
)

const taskSystemPrompt = `Ты эксперт по здоровому образу жизни. Придумай короткий выполнимый недельный челлендж для человека, отказывающегося от сахара: название и 1-2 предложения описания. Без сахара и подсластителей. Отвечай на русском языке.`

var fallbackTasks = []string{
	"🎯 Неделя без сладких напитков\n\nПей только воду, несладкий чай и кофе всю неделю.",
	"🎯 Ежедневные прогулки\n\nГуляй 30 минут на свежем воздухе каждый день.",
	"🎯 Фруктовая неделя\n\nЕшь фрукты вместо сладостей всю неделю.",
	"🎯 Утренняя зарядка\n\nДелай 10 приседаний и 10 отжиманий каждое утро.",
	"🎯 Водная неделя\n\nВыпивай 2 литра воды каждый день.",
}

// TaskService issues the weekly mini-task every user receives on Monday and
// tracks completion. One task text is generated per issue date and shared by
// everyone who gets it that day.
type TaskService struct {
	db    *gorm.DB
	gen   Generator
	clock Clock
	log   *zap.Logger
}

func NewTaskService(db *gorm.DB, gen Generator, clock Clock, log *zap.Logger) *TaskService {
	return &TaskService{db: db, gen: gen, clock: clock, log: log}
}

// GenerateText produces one task text for an issue run.
func (s *TaskService) GenerateText(ctx context.Context) string {
	if s.gen != nil {
		text, err := s.gen.Generate(ctx, taskSystemPrompt,
			"Создай недельный челлендж для человека, который отказывается от сахара")
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			s.log.Warn("task generation failed, serving fallback", zap.Error(err))
		}
	}
	return fallbackTasks[rand.Intn(len(fallbackTasks))]
}

// Issue stores the task for a user on the given date. Re-issuing the same
// date keeps the first text.
func (s *TaskService) Issue(ctx context.Context, userID uint, date time.Time, text string) error {
	task := &models.ChallengeTask{UserID: userID, Date: DateOnly(date), Text: text}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(task).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Current returns the most recent task issued to the user, or nil when none
// was issued yet.
func (s *TaskService) Current(ctx context.Context, userID uint) (*models.ChallengeTask, error) {
	var task models.ChallengeTask
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &task, nil
}

// Complete marks the user's most recent task done.
func (s *TaskService) Complete(ctx context.Context, userID uint) (*models.ChallengeTask, error) {
	task, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	if task.Completed {
		return task, nil
	}
	task.Completed = true
	if err := s.db.WithContext(ctx).Model(task).Update("completed", true).Error; err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}
