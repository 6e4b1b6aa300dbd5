// Package server assembles the HTTP surface: middleware, the module system
// and the top-level routes.
package server

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/middleware"
	"github.com/ervall/mediavault/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/ervall/mediavault/internal/modules/guestmodule"
	_ "github.com/ervall/mediavault/internal/modules/mediamodule"
	_ "github.com/ervall/mediavault/internal/modules/settingsmodule"
)

var systemEventBus events.EventBus

var moduleInitialized bool

// SetupRouter configures and returns the main router.
func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if err := initializeModules(); err != nil {
		log.Printf("Failed to initialize modules: %v", err)
	}

	setupRoutes(r)

	return r
}

// initializeModules sets up the event bus and loads all registered modules.
func initializeModules() error {
	if moduleInitialized {
		return nil
	}

	systemEventBus = events.NewBus()
	events.SetGlobalEventBus(systemEventBus)

	if err := modulemanager.LoadAll(database.GetDB()); err != nil {
		return err
	}

	moduleInitialized = true
	return nil
}
