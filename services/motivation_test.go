package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMotivationService_SuccessMessage_Milestones(t *testing.T) {
	m := NewMotivationService(nil, "", zap.NewNop())

	assert.Contains(t, m.SuccessMessage(7), "Неделя без сахара")
	assert.Contains(t, m.SuccessMessage(30), "Месяц без сахара")
	assert.Contains(t, m.SuccessMessage(100), "100 дней")
	assert.Contains(t, m.SuccessMessage(14), "14 дней", "multiples of seven celebrate the week count")
}

func TestMotivationService_SuccessMessage_PoolSubstitutesDays(t *testing.T) {
	m := NewMotivationService(nil, "", zap.NewNop())

	for i := 0; i < 50; i++ {
		msg := m.SuccessMessage(3)
		assert.NotContains(t, msg, "%d", "format verbs never leak into the text")
		if strings.Contains(msg, "3 дней") {
			return
		}
	}
	// The day-count template is one of five; fifty draws missing it every
	// time would be a broken pool, not bad luck.
	t.Error("day-count message never drawn from the pool")
}

func TestMotivationService_SlipUpMessage_CardNudge(t *testing.T) {
	withCard := NewMotivationService(nil, "4400 0000 1111 2222", zap.NewNop())
	msg := withCard.SlipUpMessage()
	assert.Contains(t, msg, "перевод 50 сом")
	assert.Contains(t, msg, "4400 0000 1111 2222")

	without := NewMotivationService(nil, "", zap.NewNop())
	msg = without.SlipUpMessage()
	assert.NotContains(t, msg, "перевод", "no card configured, no penalty nudge")
}

func TestMotivationService_Daily_UsesGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "Ты прошёл уже 9 дней, так держать!"}
	m := NewMotivationService(gen, "", zap.NewNop())

	text := m.Daily(context.Background(), 9)
	assert.Equal(t, gen.text, text)
	assert.Equal(t, 1, gen.callCount())
}

func TestMotivationService_Daily_FallsBackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model offline")}
	m := NewMotivationService(gen, "", zap.NewNop())

	text := m.Daily(context.Background(), 9)
	assert.Contains(t, dailyMotivations, text)
}

func TestMotivationService_Daily_NilGenerator(t *testing.T) {
	m := NewMotivationService(nil, "", zap.NewNop())
	assert.Contains(t, dailyMotivations, m.Daily(context.Background(), 1))
}

func TestMotivationService_Daily_PromptCarriesStreak(t *testing.T) {
	gen := &promptCapturingGenerator{}
	m := NewMotivationService(gen, "", zap.NewNop())

	m.Daily(context.Background(), 42)
	assert.Contains(t, gen.lastPrompt, strconv.Itoa(42))
}

type promptCapturingGenerator struct {
	lastPrompt string
}

func (g *promptCapturingGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.lastPrompt = prompt
	return "ок", nil
}
