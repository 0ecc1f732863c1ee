package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/middleware"
	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// respondServiceError maps tracker sentinel errors onto the API envelope.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidUser):
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
	case errors.Is(err, services.ErrFutureDate):
		utils.Error(ctx, http.StatusBadRequest, 40010, "check-in date is in the future")
	case errors.Is(err, services.ErrInvalidLength):
		utils.Error(ctx, http.StatusBadRequest, 40011, "challenge length must be positive")
	case errors.Is(err, services.ErrStoreUnavailable):
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "storage temporarily unavailable")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
