// Package settingsmodule serves the singleton system settings row: mail
// delivery configuration and the admin PIN override.
package settingsmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/auth"
	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/modules/modulemanager"
)

func init() {
	Register()
}

const (
	ModuleID   = "system.settings"
	ModuleName = "System Settings"
)

// Module implements system settings as a module.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	handler  *Handler
}

// Register registers the settings module with the module system.
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return false }

// Migrate creates the settings table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.SystemSettings{}); err != nil {
		return fmt.Errorf("failed to migrate settings models: %w", err)
	}
	return nil
}

// Init wires the handler.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}
	m.handler = NewHandler(m.db, m.eventBus)
	return nil
}

// RegisterRoutes attaches the settings routes. Admin only.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	secret := config.Get().Auth.SecretKey

	settings := router.Group("/api/v1/settings",
		auth.RequireAuth(secret), auth.RequireAdmin())
	{
		settings.GET("/", m.handler.Get)
		settings.POST("/", m.handler.Update)
	}
}
