package web

import (
	"context"
	"net/http"

	"energymon/auth"
	"energymon/internal/db"
	"energymon/internal/engine"
	"energymon/internal/web/api"
	"energymon/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WebServer struct {
	router *gin.Engine
	srv    *http.Server
}

func NewWebServer(dbConn *db.DB, jwtSecret string, eng *engine.Engine) *WebServer {
	router := gin.Default()

	authModule := auth.NewAuthModule(dbConn.Pool(), jwtSecret)
	middlewareManager := middleware.NewMiddlewareManager(authModule)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.RegisterAuthRoutes(router, authModule, middlewareManager)
	api.RegisterDeviceRoutes(router, middlewareManager, dbConn)
	api.RegisterEnergyRoutes(router, middlewareManager, dbConn)
	api.RegisterAnalyticsRoutes(router, middlewareManager, dbConn)
	api.RegisterAlertRoutes(router, middlewareManager, dbConn, eng)

	return &WebServer{router: router}
}

// Start serves HTTP on addr, blocking until Shutdown
func (ws *WebServer) Start(addr string) error {
	ws.srv = &http.Server{Addr: addr, Handler: ws.router}
	err := ws.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.srv == nil {
		return nil
	}
	return ws.srv.Shutdown(ctx)
}
