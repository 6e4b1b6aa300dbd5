// Package guestmodule manages invited guests: creation with a generated
// access PIN delivered by mail, listing, and revocation.
package guestmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/auth"
	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/mailer"
	"github.com/ervall/mediavault/internal/modules/modulemanager"
)

func init() {
	Register()
}

const (
	ModuleID   = "system.guests"
	ModuleName = "Guest Manager"
)

// Module implements guest management as a module.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	handler  *Handler
}

// Register registers the guest module with the module system.
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return false }

// Migrate creates the guest table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.Guest{}); err != nil {
		return fmt.Errorf("failed to migrate guest models: %w", err)
	}
	return nil
}

// Init wires the handler and the PIN mailer.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}
	m.handler = NewHandler(m.db, mailer.New(m.db, config.Get().SMTP), m.eventBus)
	return nil
}

// RegisterRoutes attaches the guest routes. All of them are admin only.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	secret := config.Get().Auth.SecretKey

	guests := router.Group("/api/v1/guests",
		auth.RequireAuth(secret), auth.RequireAdmin())
	{
		guests.GET("/", m.handler.List)
		guests.POST("/", m.handler.Create)
		guests.DELETE("/:id", m.handler.Delete)
	}
}
