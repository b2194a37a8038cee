package api

import (
	"fmt"
	"net/http"
	"strconv"

	"energymon/internal/db"
	"energymon/internal/engine"
	domain "energymon/internal/models"
	"energymon/internal/web/middleware"
	"energymon/internal/web/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit     = 200
	maxEventLimit         = 1000
	defaultCooldownSecond = 300
)

func RegisterAlertRoutes(router *gin.Engine, middlewareManager *middleware.MiddlewareManager, dbConn *db.DB, eng *engine.Engine) {
	alerts := router.Group("/alerts")
	alerts.Use(middlewareManager.RequireAuth())
	{
		alerts.GET("", func(c *gin.Context) {
			rules, err := dbConn.ListRules(c, c.GetString("user_id"))
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rules)
		})
		alerts.POST("", func(c *gin.Context) {
			var req models.CreateAlertRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			rule, ok := ruleFromRequest(c, &req)
			if !ok {
				return
			}
			if err := dbConn.CreateRule(c, rule); err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusCreated, rule)
		})
		alerts.GET("/:id", func(c *gin.Context) {
			rule, err := dbConn.GetRule(c, c.GetString("user_id"), c.Param("id"))
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rule)
		})
		alerts.PUT("/:id", func(c *gin.Context) {
			var upd domain.AlertRuleUpdate
			if err := c.ShouldBindJSON(&upd); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if !validateRuleUpdate(c, &upd) {
				return
			}
			rule, err := dbConn.UpdateRule(c, c.GetString("user_id"), c.Param("id"), &upd)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rule)
		})
		alerts.DELETE("/:id", func(c *gin.Context) {
			if err := dbConn.DeleteRule(c, c.GetString("user_id"), c.Param("id")); err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
		})
		alerts.POST("/evaluate", func(c *gin.Context) {
			triggered, err := eng.EvaluateAlerts(c, c.GetString("user_id"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"message": fmt.Sprintf("Evaluated alerts. Triggered %d events.", triggered),
			})
		})
		alerts.GET("/events", func(c *gin.Context) {
			limit, ok := parseLimit(c, defaultEventLimit, maxEventLimit)
			if !ok {
				return
			}
			var deviceID, alertID *string
			if v := c.Query("device_id"); v != "" {
				deviceID = &v
			}
			if v := c.Query("alert_id"); v != "" {
				alertID = &v
			}
			events, err := dbConn.ListEvents(c, c.GetString("user_id"), deviceID, alertID, limit)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
		})
		alerts.POST("/events/:id/ack", func(c *gin.Context) {
			eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
				return
			}
			acked, err := dbConn.AcknowledgeEvent(c, c.GetString("user_id"), eventID)
			if err != nil {
				storeError(c, err)
				return
			}
			if !acked {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Event acknowledged"})
		})
	}
}

// ruleFromRequest validates a create request and fills in the stored
// defaults for omitted fields
func ruleFromRequest(c *gin.Context, req *models.CreateAlertRequest) (*domain.AlertRule, bool) {
	rule := &domain.AlertRule{
		UserID:          c.GetString("user_id"),
		DeviceID:        req.DeviceID,
		Name:            req.Name,
		Kind:            req.Kind,
		Metric:          "power_w",
		Comparison:      domain.ComparisonGT,
		Threshold:       req.Threshold,
		WindowSeconds:   req.WindowSeconds,
		Severity:        domain.SeverityMedium,
		IsEnabled:       true,
		CooldownSeconds: defaultCooldownSecond,
	}
	if req.Metric != nil {
		rule.Metric = *req.Metric
	}
	if req.Comparison != nil {
		rule.Comparison = *req.Comparison
	}
	if req.Severity != nil {
		rule.Severity = *req.Severity
	}
	if req.IsEnabled != nil {
		rule.IsEnabled = *req.IsEnabled
	}
	if req.CooldownSeconds != nil {
		rule.CooldownSeconds = *req.CooldownSeconds
	}

	switch {
	case !domain.ValidKind(rule.Kind):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert_type"})
	case !domain.ValidComparison(rule.Comparison):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison"})
	case !domain.ValidSeverity(rule.Severity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
	case rule.CooldownSeconds < 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "cooldown_seconds must not be negative"})
	case rule.WindowSeconds != nil && *rule.WindowSeconds <= 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_seconds must be positive"})
	default:
		return rule, true
	}
	return nil, false
}

func validateRuleUpdate(c *gin.Context, upd *domain.AlertRuleUpdate) bool {
	switch {
	case upd.Kind != nil && !domain.ValidKind(*upd.Kind):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert_type"})
	case upd.Comparison != nil && !domain.ValidComparison(*upd.Comparison):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison"})
	case upd.Severity != nil && !domain.ValidSeverity(*upd.Severity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
	case upd.CooldownSeconds != nil && *upd.CooldownSeconds < 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "cooldown_seconds must not be negative"})
	case upd.WindowSeconds != nil && *upd.WindowSeconds <= 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_seconds must be positive"})
	default:
		return true
	}
	return false
}
