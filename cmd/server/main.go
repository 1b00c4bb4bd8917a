package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gnemet/DeckForge/internal/api"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/database"
	"github.com/gnemet/DeckForge/internal/generator"
	"github.com/gnemet/DeckForge/internal/observer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Usage log is optional
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.NewConnection(cfg.Database.GetConnectStr())
		if err != nil {
			log.Printf("Usage log disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
			if err := database.EnsureSchema(db); err != nil {
				log.Fatalf("Cannot prepare database: %v", err)
			}
		}
	}

	svc, err := generator.NewFromConfig(cfg, db)
	if err != nil {
		log.Fatalf("Cannot initialize generator: %v", err)
	}
	defer svc.Close()


	// Hot folder
	var logChan chan string
	var folder api.HotFolder
	if cfg.Application.Storage.Stage != "" {
		logChan = make(chan string, 100)
		obs := observer.NewObserver(cfg, svc, logChan)
		folder = obs
		go func() {
			if err := obs.Start(ctx); err != nil {
				log.Printf("Observer stopped: %v", err)
			}
		}()
	}

	gin.SetMode(cfg.Application.Mode)
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Application.MaxUploadMB << 20

	h, err := api.NewHandler(cfg, svc, db, folder, logChan)
	if err != nil {
		log.Fatalf("Cannot load templates: %v", err)
	}
	api.RegisterRoutes(router, h)

	// Image, search, language and upload settings follow config.yaml edits;
	// AI providers, storage and the database need a restart.
	config.WatchConfig(func(c *config.Config) {
		svc.Reconfigure(c)
		h.ApplyConfig(c)
	})

	server := &http.Server{
		Addr:         cfg.Application.Addr(),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // AI content and images are generated inline
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("%s %s starting on http://%s", cfg.Application.Name, cfg.Application.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}
}
