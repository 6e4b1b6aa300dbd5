// Package modulemanager provides module registration and initialization
// ordering. Modules self-register from their init() functions when imported.
package modulemanager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/logger"
)

// Module is the interface all modules implement.
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init() error               // Initialize the module
}

// RouteRegistrar is an optional interface for modules that register routes.
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// ModuleRegistry manages module registration and initialization.
type ModuleRegistry struct {
	modules     map[string]Module
	disabled    map[string]bool
	mu          sync.RWMutex
	initialized bool
}

// Registry is the global module registry.
var Registry = &ModuleRegistry{
	modules:  make(map[string]Module),
	disabled: make(map[string]bool),
}

// Register adds a module to the global registry.
func Register(m Module) {
	Registry.Register(m)
}

// Register adds a module to the registry.
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module %s (%s) registered after initialization", m.Name(), m.ID())
	}
	r.modules[m.ID()] = m
	logger.Info("📦 Module registered: %s (%s)", m.Name(), m.ID())
}

// Disable marks a module to be skipped during LoadAll. Core modules cannot be
// disabled.
func Disable(moduleID string) {
	Registry.mu.Lock()
	defer Registry.mu.Unlock()
	Registry.disabled[moduleID] = true
}

// LoadAll migrates and initializes all registered modules.
func LoadAll(db *gorm.DB) error {
	return Registry.LoadAll(db)
}

// LoadAll migrates and initializes modules in a stable (ID-sorted) order.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module system already initialized")
		return nil
	}

	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	logger.Info("🔄 Loading %d modules...", len(ids))

	for _, id := range ids {
		m := r.modules[id]
		if r.disabled[id] {
			if m.Core() {
				return fmt.Errorf("attempted to disable core module: %s", id)
			}
			logger.Warn("⚠️ Skipping module %s (disabled)", m.Name())
			continue
		}

		if err := m.Migrate(db); err != nil {
			return fmt.Errorf("module %s migration failed: %w", id, err)
		}
		if err := m.Init(); err != nil {
			return fmt.Errorf("module %s initialization failed: %w", id, err)
		}
		logger.Info("✅ Module loaded: %s", m.Name())
	}

	r.initialized = true
	return nil
}

// RegisterRoutes lets every enabled module attach its routes.
func RegisterRoutes(router *gin.Engine) {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	ids := make([]string, 0, len(Registry.modules))
	for id := range Registry.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if Registry.disabled[id] {
			continue
		}
		if rr, ok := Registry.modules[id].(RouteRegistrar); ok {
			rr.RegisterRoutes(router)
		}
	}
}

// ListModules returns all registered modules.
func ListModules() []Module {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	out := make([]Module, 0, len(Registry.modules))
	for _, m := range Registry.modules {
		out = append(out, m)
	}
	return out
}

// Reset clears the registry. Tests only.
func Reset() {
	Registry.mu.Lock()
	defer Registry.mu.Unlock()
	Registry.modules = make(map[string]Module)
	Registry.disabled = make(map[string]bool)
	Registry.initialized = false
}
