package api

import (
	"errors"
	"net/http"

	"energymon/auth"
	"energymon/internal/web/middleware"
	"energymon/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.Engine, authModule *auth.AuthModule, middlewareManager *middleware.MiddlewareManager) {
	r := router.Group("/auth")
	{
		r.POST("/register", func(c *gin.Context) {
			var req models.RegisterRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			user, err := authModule.Register(c, req.Email, req.Password, req.FullName)
			if err != nil {
				if errors.Is(err, auth.ErrEmailTaken) {
					c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
				return
			}
			c.JSON(http.StatusCreated, user)
		})
		r.POST("/login", func(c *gin.Context) {
			var req models.LoginRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := authModule.Login(c, req.Email, req.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
		r.GET("/me", middlewareManager.RequireAuth(), func(c *gin.Context) {
			user, err := authModule.CurrentUser(c, c.GetString("user_id"))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.JSON(http.StatusOK, user)
		})
		r.POST("/change-password", middlewareManager.RequireAuth(), func(c *gin.Context) {
			var req models.ChangePasswordRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.ChangePassword(c, c.GetString("user_id"), req.OldPassword, req.NewPassword); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Password change failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
		})
	}
}
