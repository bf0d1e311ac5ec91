package main

import (
	"log"
	"os"
	"time"

	"portfolio-tracker/internal/database"
	"portfolio-tracker/internal/middleware"
	"portfolio-tracker/internal/repository"
	routes "portfolio-tracker/internal/server"
	"portfolio-tracker/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	router := gin.Default()

	config := cors.DefaultConfig()
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	config.AllowOrigins = []string{origin}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(config))

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database/portfolio.db"
	}
	if err := database.InitDB(dbPath); err != nil {
		log.Fatalf("initializing database: %v", err)
	}
	defer database.DB.Close()

	holdingsRepo := repository.NewHoldingsRepository(database.DB)
	snapshotRepo := repository.NewSnapshotRepository(database.DB)

	quoteClient := services.NewHTTPQuoteClient(os.Getenv("QUOTE_BASE_URL"))
	valuations := services.NewValuationService(holdingsRepo, quoteClient)
	snapshots := services.NewSnapshotService(holdingsRepo, snapshotRepo, valuations)

	interval := 24 * time.Hour
	if v := os.Getenv("SNAPSHOT_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid SNAPSHOT_INTERVAL %q: %v", v, err)
		}
		interval = parsed
	}
	scheduler := services.NewSnapshotScheduler(snapshots, interval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := middleware.NewPortfolioHandler(holdingsRepo, snapshotRepo, valuations, snapshots)
	routes.RegisterRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("starting server: %v", err)
	}
}
