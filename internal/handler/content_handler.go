package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/repository"
	"github.com/wtppaul/course-marketplace/internal/service"
)

// ContentHandler serves the module and article levels of the tree.
type ContentHandler struct {
	content    service.ContentService
	publishing service.PublishingService
	enrollment service.EnrollmentService
	users      UserStore
}

func NewContentHandler(
	content service.ContentService,
	publishing service.PublishingService,
	enrollment service.EnrollmentService,
	users UserStore,
) *ContentHandler {
	return &ContentHandler{content: content, publishing: publishing, enrollment: enrollment, users: users}
}

type titleInput struct {
	Title string `json:"title" binding:"required"`
}

type reorderInput struct {
	List []repository.PositionUpdate `json:"list" binding:"required,min=1,dive"`
}

// CreateModule (POST /internal/courses/:id/modules)
func (h *ContentHandler) CreateModule(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input titleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	module, err := h.content.CreateModule(c.Request.Context(), courseID, input.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

// ReorderModules (PUT /internal/courses/:id/modules/reorder)
func (h *ContentHandler) ReorderModules(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input reorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.content.ReorderModules(c.Request.Context(), courseID, input.List); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Modules reordered"})
}

// UpdateModule (PATCH /internal/modules/:id)
func (h *ContentHandler) UpdateModule(c *gin.Context) {
	moduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var patch repository.ModulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	module, err := h.content.UpdateModule(c.Request.Context(), moduleID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

// DeleteModule (DELETE /internal/modules/:id)
func (h *ContentHandler) DeleteModule(c *gin.Context) {
	moduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	unpublished, err := h.content.DeleteModule(c.Request.Context(), moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courseUnpublished": unpublished})
}

// CreateArticle (POST /internal/modules/:id/articles)
func (h *ContentHandler) CreateArticle(c *gin.Context) {
	moduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input titleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	article, err := h.content.CreateArticle(c.Request.Context(), moduleID, input.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// ReorderArticles (PUT /internal/modules/:id/articles/reorder)
func (h *ContentHandler) ReorderArticles(c *gin.Context) {
	moduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input reorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.content.ReorderArticles(c.Request.Context(), moduleID, input.List); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Articles reordered"})
}

// ReadArticle (GET /internal/articles/:id) is the learner read path.
func (h *ContentHandler) ReadArticle(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	view, err := h.enrollment.ReadArticle(c.Request.Context(), user.ID, articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateArticle (PATCH /internal/articles/:id)
func (h *ContentHandler) UpdateArticle(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var patch repository.ArticlePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	article, err := h.content.UpdateArticle(c.Request.Context(), articleID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteArticle (DELETE /internal/articles/:id)
func (h *ContentHandler) DeleteArticle(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	unpublished, err := h.content.DeleteArticle(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courseUnpublished": unpublished})
}

// PublishArticle (POST /internal/articles/:id/publish)
func (h *ContentHandler) PublishArticle(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.publishing.PublishArticle(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(publishStatus(res), res)
}

// UnpublishArticle (POST /internal/articles/:id/unpublish)
func (h *ContentHandler) UnpublishArticle(c *gin.Context) {
	articleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.publishing.UnpublishArticle(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
