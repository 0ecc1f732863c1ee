package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sugarstop/sugarstop/models"
	"github.com/sugarstop/sugarstop/utils"
)

// NoteController stores free-form diary entries kept outside the daily
// check-in flow.
type NoteController struct {
	db *gorm.DB
}

// NewNoteController creates a NoteController.
func NewNoteController(db *gorm.DB) *NoteController {
	return &NoteController{db: db}
}

// Create saves a diary note.
func (n *NoteController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "content must not be empty")
		return
	}

	content := utils.SanitizeText(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "content must not be empty")
		return
	}
	if len([]rune(content)) > 2000 {
		rs := []rune(content)
		content = string(rs[:2000])
	}

	note := models.Note{UserID: userID, Content: content}
	if err := n.db.Create(&note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to save note")
		return
	}

	utils.Success(ctx, note)
}

// List returns the user's notes, newest first.
func (n *NoteController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := n.db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count notes")
		return
	}

	var notes []models.Note
	if err := n.db.Where("user_id = ?", userID).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list notes")
		return
	}

	utils.Paginated(ctx, notes, page, pageSize, total)
}
