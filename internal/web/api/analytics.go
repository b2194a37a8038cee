package api

import (
	"fmt"
	"net/http"
	"strconv"

	"energymon/internal/db"
	"energymon/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

const (
	defaultBucketSeconds = 300
	minBucketSeconds     = 60
	maxBucketSeconds     = 86400
)

func RegisterAnalyticsRoutes(router *gin.Engine, middlewareManager *middleware.MiddlewareManager, dbConn *db.DB) {
	analytics := router.Group("/analytics")
	analytics.Use(middlewareManager.RequireAuth())
	{
		analytics.GET("/devices/:id/summary", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			if !requireOwnedDevice(c, dbConn, userID, deviceID) {
				return
			}
			start, end, ok := parseTimeRange(c)
			if !ok {
				return
			}

			summary, err := dbConn.SummarizeRange(c, userID, deviceID, start, end)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, summary)
		})
		analytics.GET("/devices/:id/timeseries", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			if !requireOwnedDevice(c, dbConn, userID, deviceID) {
				return
			}
			start, end, ok := parseTimeRange(c)
			if !ok {
				return
			}

			bucketSeconds := defaultBucketSeconds
			if raw := c.Query("bucket_seconds"); raw != "" {
				v, err := strconv.Atoi(raw)
				if err != nil || v < minBucketSeconds || v > maxBucketSeconds {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket_seconds"})
					return
				}
				bucketSeconds = v
			}

			series, err := dbConn.BucketedTimeseries(c, userID, deviceID, start, end, bucketSeconds)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"bucket_seconds": bucketSeconds, "series": series})
		})
		analytics.GET("/devices/:id/insights", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			if !requireOwnedDevice(c, dbConn, userID, deviceID) {
				return
			}
			start, end, ok := parseTimeRange(c)
			if !ok {
				return
			}

			summary, err := dbConn.SummarizeRange(c, userID, deviceID, start, end)
			if err != nil {
				storeError(c, err)
				return
			}
			peak, err := dbConn.PeakPower(c, userID, deviceID, start, end)
			if err != nil {
				storeError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"summary":  summary,
				"peak":     peak,
				"insights": buildInsights(summary, peak),
			})
		})
	}
}

func requireOwnedDevice(c *gin.Context, dbConn *db.DB, userID, deviceID string) bool {
	owned, err := dbConn.DeviceOwnedBy(c, userID, deviceID)
	if err != nil {
		storeError(c, err)
		return false
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return false
	}
	return true
}

// buildInsights derives human-readable observations from the range
// aggregates. Heuristic only; thresholds are rough rules of thumb.
func buildInsights(summary *db.RangeSummary, peak *db.PeakReading) []string {
	insights := []string{}
	if summary.Points == 0 {
		return append(insights, "No readings recorded in this range.")
	}
	if summary.AvgPowerW != nil && summary.MaxPowerW != nil && *summary.AvgPowerW > 0 {
		ratio := *summary.MaxPowerW / *summary.AvgPowerW
		if ratio >= 3 {
			insights = append(insights, fmt.Sprintf(
				"Peak power (%.0f W) is %.1fx the average; usage is spiky.", *summary.MaxPowerW, ratio))
		} else {
			insights = append(insights, "Power usage is relatively steady across the range.")
		}
	}
	if peak != nil {
		insights = append(insights, fmt.Sprintf(
			"Highest draw of %.0f W occurred at %s.", peak.PowerW, peak.TS.Format("2006-01-02 15:04 MST")))
	}
	if summary.EnergyWhDelta != nil && *summary.EnergyWhDelta > 0 {
		insights = append(insights, fmt.Sprintf(
			"Approximately %.1f kWh consumed over the range.", *summary.EnergyWhDelta/1000))
	}
	return insights
}
