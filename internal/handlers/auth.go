package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/services"
)

type AuthHandler struct {
	userService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Check looks a user up by phone. Absence is a valid outcome reported as
// found:false, not an error.
func (ah *AuthHandler) Check(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Validation failed")
		return
	}

	user, err := ah.userService.CheckByPhone(c.Request.Context(), req.Phone)
	if err != nil {
		RespondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "found": true, "data": user})
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,min=2"`
		Phone string `json:"phone" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Validation failed")
		return
	}

	user, err := ah.userService.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, user)
}
