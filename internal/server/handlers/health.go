package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/database"
)

// Health reports process liveness.
func Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// Ready reports readiness: the database connection must be up.
func Ready(c *gin.Context) {
	if database.GetDB() == nil {
		c.JSON(503, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(200, gin.H{"status": "ready"})
}
