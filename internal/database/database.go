// Package database owns the gorm connection and the canonical models. All
// modules migrate their tables through this connection during module load.
package database

import (
	"strings"
	"sync"

	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Initialize opens the database selected by configuration. A postgres:// URL
// selects the postgres driver; anything else is a sqlite path.
func Initialize() error {
	var initErr error
	once.Do(func() {
		url := config.Get().Database.URL
		dialector := open(url)

		conn, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			initErr = err
			return
		}

		db = conn
		logger.Info("Database connection established", []logger.Field{
			logger.String("url", redact(url)),
		})
	})
	return initErr
}

func open(url string) gorm.Dialector {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

// redact hides credentials embedded in a postgres URL.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}

// GetDB returns the shared connection, or nil before Initialize.
func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the shared connection. Used by tests to inject an in-memory
// database.
func SetDB(conn *gorm.DB) {
	db = conn
}
