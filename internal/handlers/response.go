package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/apierr"
)

// Every response carries an ok flag plus either data or a message, so the
// client can branch on status code first and message second.

func RespondData(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"ok": true, "data": payload})
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"ok": false, "message": message})
}

// RespondError is the single funnel for uncategorized failures: apierr
// carries its own status, everything else is a 500.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		status = ae.Status
	}
	if err != nil {
		message = err.Error()
	}
	c.JSON(status, gin.H{"ok": false, "message": message})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
