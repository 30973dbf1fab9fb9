package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/services"
)

type UserHandler struct {
	userService   services.UserService
	lessonService services.LessonService
}

func NewUserHandler(userService services.UserService, lessonService services.LessonService) *UserHandler {
	return &UserHandler{userService: userService, lessonService: lessonService}
}

// Create is the administrative path; its phone minimum differs from the
// register flow on purpose.
func (uh *UserHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,min=2"`
		Phone string `json:"phone" binding:"required,min=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Validation failed")
		return
	}

	user, err := uh.userService.Create(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, user)
}

func (uh *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	result, err := uh.userService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": result.Items,
		"meta": gin.H{
			"page":     result.Page,
			"pageSize": result.PageSize,
			"total":    result.Total,
			"pages":    result.Pages,
		},
	})
}

func (uh *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		RespondMessage(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	user, err := uh.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, user)
}

func (uh *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		RespondMessage(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	var req struct {
		Name  *string `json:"name" binding:"omitempty,min=2"`
		Phone *string `json:"phone" binding:"omitempty,min=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Validation failed")
		return
	}

	user, err := uh.userService.Update(c.Request.Context(), id, services.UpdateUserInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, user)
}

func (uh *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		RespondMessage(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := uh.userService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uh *UserHandler) Lessons(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		RespondMessage(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	lessons, err := uh.lessonService.ListForUser(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, lessons)
}
