package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/middleware"
	"github.com/sistenfrota/auth-service/internal/services"
)

type UserController struct {
	authService *services.AuthService
	log         *zap.Logger
}

func NewUserController(authService *services.AuthService, log *zap.Logger) *UserController {
	return &UserController{authService: authService, log: log}
}

// Me returns the authenticated caller's record. The vehicle and maintenance
// services call this endpoint to resolve a bearer token into an identity.
// GET /api/auth/me
func (uc *UserController) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers returns the paginated user listing for administrators.
// GET /api/auth/users
func (uc *UserController) ListUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, total, err := uc.authService.ListUsers(limit, offset)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}
