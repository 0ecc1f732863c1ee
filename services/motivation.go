package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"
)

const motivationSystemPrompt = `Ты мотивационный тренер, помогающий людям отказаться от сахара. Пиши короткие поддерживающие сообщения на русском языке, 2-3 предложения, упоминай достижение в днях.`

var successMessages = []string{
	"🎉 Отличная работа! Ты держишься уже %d дней!",
	"🔥 Невероятно! Твоя сила воли впечатляет!",
	"💪 Каждый день без сахара - это победа!",
	"🌟 Ты становишься сильнее с каждым днём!",
	"🏆 Продолжай в том же духе! Ты молодец!",
}

var slipUpMessages = []string{
	"😔 Не переживай, срывы случаются у всех. Главное - не сдаваться!",
	"🔄 Завтра новый день и новые возможности!",
	"💪 Один срыв не отменяет весь твой прогресс!",
	"🌟 Каждая неудача - это урок. Учись и двигайся дальше!",
	"🎯 Помни о своей цели! Ты сильнее, чем думаешь!",
}

var dailyMotivations = []string{
	"🌅 Доброе утро! Сегодня отличный день для укрепления твоей силы воли!",
	"☀️ Новый день - новые возможности! Ты справишься!",
	"💪 Сегодня ты станешь сильнее, чем вчера!",
	"🎯 Помни о своей цели - здоровое тело и ясный ум!",
	"🌟 Ты на правильном пути! Продолжай движение!",
}

// MotivationService hands out encouragement texts. Milestone streaks get a
// fixed celebration, everything else comes from the model with the canned
// pools as fallback.
type MotivationService struct {
	gen         Generator
	paymentCard string
	log         *zap.Logger
}

// NewMotivationService builds the service; gen may be nil. paymentCard is the
// optional card number quoted in the slip-up nudge and disables that message
// when empty.
func NewMotivationService(gen Generator, paymentCard string, log *zap.Logger) *MotivationService {
	return &MotivationService{gen: gen, paymentCard: paymentCard, log: log}
}

// SuccessMessage congratulates a successful check-in, preferring milestone
// celebrations over the generic pool.
func (m *MotivationService) SuccessMessage(streakDays int) string {
	switch {
	case streakDays == 7:
		return "🎉 Неделя без сахара! Ты настоящий герой! 🌟"
	case streakDays == 30:
		return "🏆 Месяц без сахара! Ты достиг невероятного результата! 💎"
	case streakDays == 100:
		return "👑 100 дней! Ты король силы воли! 👑"
	case streakDays > 0 && streakDays%7 == 0:
		return fmt.Sprintf("🎊 %d дней! Каждую неделю ты становишься сильнее! 💪", streakDays)
	}
	msg := successMessages[rand.Intn(len(successMessages))]
	if strings.Contains(msg, "%d") {
		return fmt.Sprintf(msg, streakDays)
	}
	return msg
}

// SlipUpMessage consoles after a failed check-in and, when a card number is
// configured, appends the penalty nudge the community agreed on.
func (m *MotivationService) SlipUpMessage() string {
	msg := slipUpMessages[rand.Intn(len(slipUpMessages))]
	if m.paymentCard != "" {
		msg += fmt.Sprintf("\n\n💸 По нашим правилам за срыв полагается перевод 50 сом:\n💳 %s", m.paymentCard)
	}
	return msg
}

// Daily returns a fresh motivational text for the user's current streak,
// falling back to the canned pool when no model answers.
func (m *MotivationService) Daily(ctx context.Context, streakDays int) string {
	if m.gen != nil {
		prompt := fmt.Sprintf("Создай мотивационное сообщение для человека, который уже %d дней не ест сахар", streakDays)
		if text, err := m.gen.Generate(ctx, motivationSystemPrompt, prompt); err == nil && text != "" {
			return text
		} else if err != nil {
			m.log.Warn("motivation generation failed, serving fallback", zap.Error(err))
		}
	}
	return dailyMotivations[rand.Intn(len(dailyMotivations))]
}
