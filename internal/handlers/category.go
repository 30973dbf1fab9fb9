package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/services"
)

type CategoryHandler struct {
	catalogService services.CatalogService
}

func NewCategoryHandler(catalogService services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

func (ch *CategoryHandler) List(c *gin.Context) {
	categories, err := ch.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, http.StatusOK, categories)
}
