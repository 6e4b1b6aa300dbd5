package server

import (
	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/auth"
	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/modules/modulemanager"
	"github.com/ervall/mediavault/internal/server/handlers"
)

// setupRoutes wires the top-level routes, then lets each module attach its
// own group.
func setupRoutes(r *gin.Engine) {
	r.GET("/health", handlers.Health)
	r.GET("/ready", handlers.Ready)

	authService := auth.NewService(database.GetDB(), config.Get().Auth)
	authHandler := handlers.NewAuthHandler(authService)
	r.POST("/api/v1/auth/login", authHandler.Login)

	modulemanager.RegisterRoutes(r)
}
