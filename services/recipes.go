package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/sugarstop/sugarstop/models"
)

const (
	recipeCacheTTL = 24 * time.Hour
	snacksCacheKey = "recipes:snacks"
)

const recipeSystemPrompt = `Ты эксперт по здоровому питанию. Создавай вкусные рецепты без сахара, мёда, сиропов и других подсластителей. Укажи название блюда, список ингредиентов, время приготовления и пошаговую инструкцию. Отвечай на русском языке.`

const snacksSystemPrompt = `Ты эксперт по здоровому питанию. Предложи список из 8-10 полезных перекусов без сахара, по одному на строку, с коротким пояснением. Отвечай на русском языке.`

var fallbackSnacks = "Вместо сладкого попробуйте:\n\n" + strings.Join([]string{
	"🍎 Яблоко с корицей",
	"🥜 Горсть орехов (миндаль, грецкие орехи)",
	"🥕 Морковные палочки с хумусом",
	"🍓 Клубника или другие ягоды",
	"🧀 Кусочек сыра",
	"🥛 Греческий йогурт без добавок",
}, "\n")

func fallbackRecipe(ingredients string) string {
	return fmt.Sprintf(`🍳 Здоровый салат

⏰ Время приготовления: 15 минут

🥗 Ингредиенты:
- %s
- Оливковое масло
- Лимонный сок
- Соль и перец по вкусу

👨‍🍳 Приготовление:
1. Нарежьте все ингредиенты
2. Смешайте в большой миске
3. Заправьте маслом и лимонным соком`, ingredients)
}

// RecipeService generates sugar-free recipes. Identical ingredient lists are
// answered from cache and concurrent misses for the same list are collapsed
// into one model call.
type RecipeService struct {
	db    *gorm.DB
	gen   Generator
	cache Cache
	group singleflight.Group
	log   *zap.Logger
}

// NewRecipeService builds a service; gen may be nil when no model is
// configured, in which case every request gets the canned fallback.
func NewRecipeService(db *gorm.DB, gen Generator, cache Cache, log *zap.Logger) *RecipeService {
	return &RecipeService{db: db, gen: gen, cache: cache, log: log}
}

func recipeCacheKey(ingredients string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(ingredients)))
	return "recipes:ingredients:" + hex.EncodeToString(sum[:8])
}

// Suggest returns a recipe for the given ingredients and appends it to the
// user's history.
func (s *RecipeService) Suggest(ctx context.Context, userID uint, ingredients string) (*models.Recipe, error) {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return nil, fmt.Errorf("ingredients required")
	}

	key := recipeCacheKey(ingredients)
	fromCache := true
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if b, ok := s.cache.Get(ctx, key); ok {
			return string(b), nil
		}
		fromCache = false
		text := s.generate(ctx, recipeSystemPrompt,
			"Создай рецепт здорового блюда без сахара из этих ингредиентов: "+ingredients,
			func() string { return fallbackRecipe(ingredients) })
		s.cache.Set(ctx, key, []byte(text), recipeCacheTTL)
		return text, nil
	})
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Ingredients: ingredients,
		Content:     v.(string),
		FromCache:   fromCache,
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, storeErr(err)
	}
	return recipe, nil
}

// Snacks returns sugar-free snack ideas; the list is shared between users
// and cached once for everyone.
func (s *RecipeService) Snacks(ctx context.Context) (string, error) {
	v, err, _ := s.group.Do(snacksCacheKey, func() (interface{}, error) {
		if b, ok := s.cache.Get(ctx, snacksCacheKey); ok {
			return string(b), nil
		}
		text := s.generate(ctx, snacksSystemPrompt,
			"Предложи полезные перекусы вместо сладкого",
			func() string { return fallbackSnacks })
		s.cache.Set(ctx, snacksCacheKey, []byte(text), recipeCacheTTL)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// History lists the user's generated recipes, newest first.
func (s *RecipeService) History(ctx context.Context, userID uint, page, pageSize int) ([]models.Recipe, int64, error) {
	var total int64
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	var list []models.Recipe
	err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return list, total, nil
}

func (s *RecipeService) generate(ctx context.Context, system, prompt string, fallback func() string) string {
	if s.gen == nil {
		return fallback()
	}
	text, err := s.gen.Generate(ctx, system, prompt)
	if err != nil {
		s.log.Warn("recipe generation failed, serving fallback", zap.Error(err))
		return fallback()
	}
	return text
}
