package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/repository"
	"github.com/wtppaul/course-marketplace/internal/service"
)

type CourseHandler struct {
	content    service.ContentService
	publishing service.PublishingService
	users      UserStore
}

func NewCourseHandler(content service.ContentService, publishing service.PublishingService, users UserStore) *CourseHandler {
	return &CourseHandler{content: content, publishing: publishing, users: users}
}

// GetPublishedCourses (GET /internal/courses/public?page=&limit=)
func (h *CourseHandler) GetPublishedCourses(c *gin.Context) {
	courses, err := h.content.ListPublishedCourses(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetPublishedCourse (GET /internal/courses/:id/published)
func (h *CourseHandler) GetPublishedCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.content.GetPublishedCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse (POST /internal/courses)
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	instructor, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var input struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	course, err := h.content.CreateCourse(c.Request.Context(), instructor.ID, input.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// GetCourseByID (GET /internal/courses/:id) returns the full edit tree.
func (h *CourseHandler) GetCourseByID(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	course, err := h.content.GetCourseForEdit(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// UpdateCourse (PATCH /internal/courses/:id)
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var patch repository.CoursePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	course, err := h.content.UpdateCourse(c.Request.Context(), courseID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse (DELETE /internal/courses/:id)
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteCourse(c.Request.Context(), courseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PublishCourse (POST /internal/courses/:id/publish)
// An incomplete course answers 422 with the missing fields.
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.publishing.PublishCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(publishStatus(res), res)
}

// UnpublishCourse (POST /internal/courses/:id/unpublish)
func (h *CourseHandler) UnpublishCourse(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.publishing.UnpublishCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetCoverImage (PUT /internal/courses/:id/cover)
func (h *CourseHandler) SetCoverImage(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input service.AttachmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	attachment, err := h.content.SetCoverImage(c.Request.Context(), courseID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

// GetCoursesByTeacherID (GET /internal/teachers/:teacherId/courses)
func (h *CourseHandler) GetCoursesByTeacherID(c *gin.Context) {
	teacherID, ok := uuidParam(c, "teacherId")
	if !ok {
		return
	}
	courses, err := h.content.ListInstructorCourses(c.Request.Context(), teacherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func publishStatus(res service.PublishResult) int {
	if len(res.Missing) > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}
