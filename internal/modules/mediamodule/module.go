// Package mediamodule provides the media side of the vault backend: the REST
// endpoints for listing, uploading, editing and deleting items, disk storage
// for uploaded files, and a watcher over the upload directory.
package mediamodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/auth"
	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/logger"
	"github.com/ervall/mediavault/internal/modules/modulemanager"
)

// Auto-register the module when imported.
func init() {
	Register()
}

const (
	ModuleID   = "system.media"
	ModuleName = "Media Manager"
)

// Module implements the media functionality as a module.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus

	storage *Storage
	watcher *Watcher
	handler *Handler
}

// Register registers the media module with the module system.
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates the media table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.MediaItem{}); err != nil {
		return fmt.Errorf("failed to migrate media models: %w", err)
	}
	return nil
}

// Init wires storage, the upload-dir watcher and the HTTP handler.
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	cfg := config.Get().Media
	storage, err := NewStorage(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}
	m.storage = storage

	watcher, err := NewWatcher(cfg.UploadDir, m.eventBus)
	if err != nil {
		// Watching is best effort; the vault works without it.
		logger.Warn("Upload directory watcher unavailable: %v", err)
	} else {
		m.watcher = watcher
		m.watcher.Start()
	}

	m.handler = NewHandler(m.db, m.storage, m.eventBus)

	logger.Info("Media module initialized", []logger.Field{
		logger.String("upload_dir", cfg.UploadDir),
	})
	return nil
}

// Shutdown stops the upload-dir watcher.
func (m *Module) Shutdown() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// RegisterRoutes attaches the media REST routes.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	secret := config.Get().Auth.SecretKey

	media := router.Group("/api/v1/media", auth.RequireAuth(secret))
	{
		media.GET("/videos", m.handler.ListVideos)
		media.GET("/audio", m.handler.ListAudio)

		admin := media.Group("", auth.RequireAdmin())
		{
			admin.POST("/upload", m.handler.Upload)
			admin.PUT("/:id", m.handler.Update)
			admin.DELETE("/:id", m.handler.Delete)
		}
	}

	// Uploaded bytes are served straight from disk.
	router.Static(config.Get().Media.PublicURL, config.Get().Media.UploadDir)
}
