package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ervall/mediavault/internal/config"
	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/debug"
	"github.com/ervall/mediavault/internal/server"
)

func main() {
	fmt.Println("==============================")
	fmt.Println("  Media Vault - Module System ")
	fmt.Println("==============================")

	envFile := os.Getenv("MEDIAVAULT_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		log.Printf("⚠️  Warning: failed to load %s: %v", envFile, err)
		cfg = config.Get()
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	r := server.SetupRouter()

	if err := debug.SeedIfRequested(database.GetDB()); err != nil {
		log.Printf("⚠️  Dev seed failed: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
