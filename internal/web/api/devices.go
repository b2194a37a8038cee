package api

import (
	"net/http"

	"energymon/internal/db"
	domain "energymon/internal/models"
	"energymon/internal/web/middleware"
	"energymon/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(router *gin.Engine, middlewareManager *middleware.MiddlewareManager, dbConn *db.DB) {
	devices := router.Group("/devices")
	devices.Use(middlewareManager.RequireAuth())
	{
		devices.GET("", func(c *gin.Context) {
			list, err := dbConn.ListDevices(c, c.GetString("user_id"))
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})
		devices.POST("", func(c *gin.Context) {
			var req models.CreateDeviceRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			dev := &domain.Device{
				UserID:           c.GetString("user_id"),
				Name:             req.Name,
				Location:         req.Location,
				Model:            req.Model,
				Manufacturer:     req.Manufacturer,
				SerialNumber:     req.SerialNumber,
				ExternalDeviceID: req.ExternalDeviceID,
				Timezone:         "UTC",
			}
			if req.Timezone != nil {
				dev.Timezone = *req.Timezone
			}
			if err := dbConn.CreateDevice(c, dev); err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusCreated, dev)
		})
		devices.GET("/:id", func(c *gin.Context) {
			dev, err := dbConn.GetDevice(c, c.GetString("user_id"), c.Param("id"))
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, dev)
		})
		devices.PUT("/:id", func(c *gin.Context) {
			var upd domain.DeviceUpdate
			if err := c.ShouldBindJSON(&upd); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			dev, err := dbConn.UpdateDevice(c, c.GetString("user_id"), c.Param("id"), &upd)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, dev)
		})
		devices.DELETE("/:id", func(c *gin.Context) {
			if err := dbConn.DeleteDevice(c, c.GetString("user_id"), c.Param("id")); err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Device deleted"})
		})
	}
}
