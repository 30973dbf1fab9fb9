package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/services"
)

type LessonHandler struct {
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func (lh *LessonHandler) Create(c *gin.Context) {
	var req struct {
		CategoryID    uint   `json:"categoryId" binding:"required"`
		SubCategoryID uint   `json:"subCategoryId" binding:"required"`
		Prompt        string `json:"prompt" binding:"required,min=3"`
		UserID        *uint  `json:"userId"`
		Format        string `json:"format" binding:"omitempty,oneof=markdown json"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Validation failed")
		return
	}

	lesson, err := lh.lessonService.Create(c.Request.Context(), services.CreateLessonInput{
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Prompt:        req.Prompt,
		UserID:        req.UserID,
		Format:        req.Format,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusCreated, lesson)
}

func (lh *LessonHandler) List(c *gin.Context) {
	lessons, err := lh.lessonService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, lessons)
}

func (lh *LessonHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		RespondMessage(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	lesson, err := lh.lessonService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, lesson)
}
