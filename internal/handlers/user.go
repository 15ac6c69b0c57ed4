package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/services"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		authService: services.NewAuthService(db, 0),
	}
}

// List returns the active user directory
// GET /api/users?search=
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users)
}
