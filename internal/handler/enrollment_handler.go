package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/service"
)

type EnrollmentHandler struct {
	enrollment service.EnrollmentService
	users      UserStore
}

func NewEnrollmentHandler(enrollment service.EnrollmentService, users UserStore) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment, users: users}
}

// CreateRequest (POST /internal/courses/:id/requests)
func (h *EnrollmentHandler) CreateRequest(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	req, err := h.enrollment.CreateRequest(c.Request.Context(), user.ID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListCourseRequests (GET /internal/courses/:id/requests)
func (h *EnrollmentHandler) ListCourseRequests(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	list, err := h.enrollment.ListCourseRequests(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CurrentRequest (GET /internal/courses/:id/requests/current)
func (h *EnrollmentHandler) CurrentRequest(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	req, err := h.enrollment.CurrentRequest(c.Request.Context(), user.ID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// AcceptRequest (POST /internal/requests/:id/accept)
func (h *EnrollmentHandler) AcceptRequest(c *gin.Context) {
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, enrollment, err := h.enrollment.AcceptRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "enrollment": enrollment})
}

// RejectRequest (POST /internal/requests/:id/reject)
func (h *EnrollmentHandler) RejectRequest(c *gin.Context) {
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, err := h.enrollment.RejectRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListMyEnrollments (GET /internal/me/enrollments)
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.enrollment.ListEnrollments(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
