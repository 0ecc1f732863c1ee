package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sugarstop/sugarstop/models"
)

func newRecipeFixture(t *testing.T, gen Generator) (*RecipeService, uint) {
	t.Helper()
	db := openTestDB(t)
	user := models.User{Username: "vera"}
	require.NoError(t, db.Create(&user).Error)
	return NewRecipeService(db, gen, NewMemoryCache(), zap.NewNop()), user.ID
}

func TestRecipeService_Suggest(t *testing.T) {
	gen := &fakeGenerator{text: "🍳 Овсяноблин\n\nСмешай овсянку с яйцом и жарь без масла."}
	svc, userID := newRecipeFixture(t, gen)
	ctx := context.Background()

	rec, err := svc.Suggest(ctx, userID, "овсянка, яйцо")
	require.NoError(t, err)
	assert.Equal(t, gen.text, rec.Content)
	assert.Equal(t, "овсянка, яйцо", rec.Ingredients)
	assert.False(t, rec.FromCache, "first request hits the model")
	assert.Equal(t, 1, gen.callCount())
}

func TestRecipeService_Suggest_CacheHit(t *testing.T) {
	gen := &fakeGenerator{text: "рецепт"}
	svc, userID := newRecipeFixture(t, gen)
	ctx := context.Background()

	_, err := svc.Suggest(ctx, userID, "Творог и Ягоды")
	require.NoError(t, err)

	// Same list, different case: cache key is case-insensitive.
	rec, err := svc.Suggest(ctx, userID, "творог и ягоды")
	require.NoError(t, err)
	assert.True(t, rec.FromCache)
	assert.Equal(t, 1, gen.callCount(), "second request never reaches the model")
}

func TestRecipeService_Suggest_EmptyIngredients(t *testing.T) {
	svc, userID := newRecipeFixture(t, nil)

	_, err := svc.Suggest(context.Background(), userID, "   ")
	assert.Error(t, err)
}

func TestRecipeService_Suggest_FallbackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc, userID := newRecipeFixture(t, gen)

	rec, err := svc.Suggest(context.Background(), userID, "кабачок")
	require.NoError(t, err)
	assert.Contains(t, rec.Content, "кабачок", "fallback recipe embeds the ingredients")
	assert.Contains(t, rec.Content, "Здоровый салат")
}

func TestRecipeService_Suggest_NilGenerator(t *testing.T) {
	svc, userID := newRecipeFixture(t, nil)

	rec, err := svc.Suggest(context.Background(), userID, "гречка")
	require.NoError(t, err)
	assert.Contains(t, rec.Content, "гречка")
}

func TestRecipeService_Snacks(t *testing.T) {
	gen := &fakeGenerator{text: "🥜 Орехи — сытно и без сахара"}
	svc, _ := newRecipeFixture(t, gen)
	ctx := context.Background()

	text, err := svc.Snacks(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen.text, text)

	// The list is shared, so the second call is a cache hit.
	_, err = svc.Snacks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.callCount())
}

func TestRecipeService_Snacks_Fallback(t *testing.T) {
	svc, _ := newRecipeFixture(t, nil)

	text, err := svc.Snacks(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "Яблоко с корицей")
}

func TestRecipeService_History_NewestFirst(t *testing.T) {
	gen := &fakeGenerator{text: "рецепт"}
	svc, userID := newRecipeFixture(t, gen)
	ctx := context.Background()

	for _, ing := range []string{"морковь", "свёкла", "капуста"} {
		_, err := svc.Suggest(ctx, userID, ing)
		require.NoError(t, err)
	}

	list, total, err := svc.History(ctx, userID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "капуста", list[0].Ingredients, "newest first")
	assert.Equal(t, "свёкла", list[1].Ingredients)

	list, _, err = svc.History(ctx, userID, 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "морковь", list[0].Ingredients)
}

func TestRecipeService_ConcurrentSuggestCollapses(t *testing.T) {
	gen := &fakeGenerator{text: "общий рецепт"}
	svc, userID := newRecipeFixture(t, gen)
	ctx := context.Background()

	const n = 10
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Suggest(ctx, userID, "тыква")
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-done)
	}
	assert.LessOrEqual(t, gen.callCount(), 2,
		"concurrent identical requests collapse into at most one flight before the cache fills")
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	b, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry expired")

	c.Set(ctx, "forever", []byte("v"), 0)
	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok, "zero ttl never expires")

	c.Del(ctx, "forever")
	_, ok = c.Get(ctx, "forever")
	assert.False(t, ok)
}
