package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/service"
)

type ProgressHandler struct {
	progress service.ProgressService
	users    UserStore
}

func NewProgressHandler(progress service.ProgressService, users UserStore) *ProgressHandler {
	return &ProgressHandler{progress: progress, users: users}
}

// GetCourseProgress (GET /internal/courses/:id/progress)
// percentage is null when the course has no published article.
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	detail, err := h.progress.CourseProgressDetail(c.Request.Context(), courseID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// MarkArticleProgress (PUT /internal/articles/:id/progress)
func (h *ProgressHandler) MarkArticleProgress(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var input struct {
		IsCompleted *bool `json:"isCompleted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	row, err := h.progress.MarkArticleProgress(c.Request.Context(), user.ID, articleID, *input.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ListMyProgress (GET /internal/me/progress)
func (h *ProgressHandler) ListMyProgress(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.progress.ListLearnerProgress(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
