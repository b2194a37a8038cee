package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"energymon/internal/db"

	"github.com/gin-gonic/gin"
)

// storeError maps repository sentinels onto HTTP statuses. Rows the
// caller does not own surface as not-found, never as forbidden.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, db.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Name already in use"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// parseTimeRange reads the start and end query parameters (RFC 3339) and
// requires end >= start
func parseTimeRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start time"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end time"})
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not precede start"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseLimit reads the limit query parameter, clamped into [1, max]
func parseLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return 0, false
	}
	return limit, true
}
