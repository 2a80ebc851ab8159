package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/middleware"
	"github.com/wtppaul/course-marketplace/internal/models"
)

// UserStore resolves the gateway's AuthID to a local profile.
type UserStore interface {
	FindOrCreateUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	SetPayoutAccount(ctx context.Context, userID uuid.UUID, accountID string) error
}

func errorBody(message, code string) gin.H {
	return gin.H{"error": gin.H{"message": message, "code": code}}
}

// respondError maps err to a status via its apperr kind. Internal details
// are not echoed back.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, errorBody(message, apperr.CodeOf(err)))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(err.Error(), "invalid_request"))
}

// uuidParam parses a path parameter and writes a 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid "+name+" format", "invalid_id"))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser exchanges the AuthID set by the internal middleware for the
// local profile, creating a placeholder on first sight.
func currentUser(c *gin.Context, users UserStore) (*models.User, bool) {
	authID := c.GetString(middleware.AuthIDKey)
	if authID == "" {
		c.JSON(http.StatusUnauthorized, errorBody("Missing user context", "unauthorized"))
		return nil, false
	}
	user, err := users.FindOrCreateUserByAuthID(c.Request.Context(), authID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
