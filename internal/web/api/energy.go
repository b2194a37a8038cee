package api

import (
	"net/http"
	"time"

	"energymon/internal/db"
	"energymon/internal/metrics"
	domain "energymon/internal/models"
	"energymon/internal/web/middleware"
	"energymon/internal/web/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultRangeLimit = 5000
	maxRangeLimit     = 20000
)

func RegisterEnergyRoutes(router *gin.Engine, middlewareManager *middleware.MiddlewareManager, dbConn *db.DB) {
	energy := router.Group("/energy")
	energy.Use(middlewareManager.RequireAuth())
	{
		// Upsert: a reading resent for the same (device, ts) replaces the
		// stored values instead of duplicating the sample
		energy.POST("/devices/:id/readings", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			var req models.ReadingRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}

			owned, err := dbConn.DeviceOwnedBy(c, userID, deviceID)
			if err != nil {
				storeError(c, err)
				return
			}
			if !owned {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}

			ts := time.Now().UTC()
			if req.TS != nil {
				ts = *req.TS
			}
			reading := &domain.Reading{
				DeviceID: deviceID,
				TS:       ts,
				PowerW:   req.PowerW,
				VoltageV: req.VoltageV,
				CurrentA: req.CurrentA,
				EnergyWh: req.EnergyWh,
				Source:   "api",
			}
			if err := dbConn.UpsertReading(c, userID, reading); err != nil {
				storeError(c, err)
				return
			}
			metrics.ReadingsIngested.WithLabelValues("api").Inc()
			c.JSON(http.StatusCreated, reading)
		})
		energy.GET("/devices/:id/latest", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			owned, err := dbConn.DeviceOwnedBy(c, userID, deviceID)
			if err != nil {
				storeError(c, err)
				return
			}
			if !owned {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}

			reading, err := dbConn.LatestReading(c, userID, deviceID)
			if err != nil {
				storeError(c, err)
				return
			}
			if reading == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "No readings"})
				return
			}
			c.JSON(http.StatusOK, reading)
		})
		energy.GET("/devices/:id/range", func(c *gin.Context) {
			userID := c.GetString("user_id")
			deviceID := c.Param("id")

			owned, err := dbConn.DeviceOwnedBy(c, userID, deviceID)
			if err != nil {
				storeError(c, err)
				return
			}
			if !owned {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}

			start, end, ok := parseTimeRange(c)
			if !ok {
				return
			}
			limit, ok := parseLimit(c, defaultRangeLimit, maxRangeLimit)
			if !ok {
				return
			}

			readings, err := dbConn.RangeReadings(c, userID, deviceID, start, end, limit)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"readings": readings, "count": len(readings)})
		})
	}
}
