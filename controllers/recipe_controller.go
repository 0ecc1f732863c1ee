package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

// RecipeController serves sugar-free recipe generation from a list of
// ingredients, the shared snack ideas list and the user's recipe history.
type RecipeController struct {
	recipes *services.RecipeService
}

// NewRecipeController creates a RecipeController.
func NewRecipeController(recipes *services.RecipeService) *RecipeController {
	return &RecipeController{recipes: recipes}
}

// Suggest generates a recipe from the ingredients the user has at hand.
func (r *RecipeController) Suggest(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Ingredients string `json:"ingredients" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "ingredients must not be empty")
		return
	}

	ingredients := utils.SanitizeText(req.Ingredients)
	if ingredients == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "ingredients must not be empty")
		return
	}
	if len([]rune(ingredients)) > 500 {
		rs := []rune(ingredients)
		ingredients = string(rs[:500])
	}

	recipe, err := r.recipes.Suggest(ctx.Request.Context(), userID, ingredients)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, recipe)
}

// Snacks returns the sugar-free snack ideas list shared by all users.
func (r *RecipeController) Snacks(ctx *gin.Context) {
	text, err := r.recipes.Snacks(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"text": text})
}

// History lists the user's generated recipes, newest first.
func (r *RecipeController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	// The bot shows the five most recent recipes unless the client asks for more.
	page, pageSize := parsePagination(ctx.Query("page"), ctx.DefaultQuery("page_size", "5"))

	items, total, err := r.recipes.History(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Paginated(ctx, items, page, pageSize, total)
}
