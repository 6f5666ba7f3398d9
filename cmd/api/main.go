package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iamasit07/tetrecs/backend/internal/config"
	"github.com/iamasit07/tetrecs/backend/internal/repository/postgres"
	"github.com/iamasit07/tetrecs/backend/internal/repository/redis"
	"github.com/iamasit07/tetrecs/backend/internal/service/cleanup"
	"github.com/iamasit07/tetrecs/backend/internal/service/game"
	"github.com/iamasit07/tetrecs/backend/internal/service/scores"
	transportHttp "github.com/iamasit07/tetrecs/backend/internal/transport/http"
	"github.com/iamasit07/tetrecs/backend/internal/transport/http/middleware"
	"github.com/iamasit07/tetrecs/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()

	// 1. Database
	db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
	if err != nil {
		log.Fatal("Database unreachable:", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migration completed successfully")

	gameRepo := postgres.NewGameRepo(db)
	scoreRepo := postgres.NewScoreRepo(db)

	// 2. Redis (optional cache)
	var cache scores.CacheRepository
	redisCache, err := redis.InitRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Printf("[REDIS] Warning: %v. Serving scores from PostgreSQL only.", err)
	} else {
		defer redisCache.Close()
		cache = redisCache
	}

	// 3. Services
	scoreService := scores.NewService(scoreRepo, cache, cfg.HighScoreLimit, cfg.JWTSecret, cfg.ScoreTokenTTL)
	sessionManager := game.NewSessionManager(game.Options{
		Cols:          cfg.GridCols,
		Rows:          cfg.GridRows,
		StartingLives: cfg.StartingLives,
		Repo:          gameRepo,
	}, cfg.SessionIdleTimeout)

	cleanupWorker := cleanup.NewWorker(sessionManager, gameRepo)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// 4. Handlers
	connManager := websocket.NewConnectionManager()
	wsHandler := websocket.NewHandler(connManager, sessionManager, scoreService, cfg.AllowedOrigins)
	scoresHandler := transportHttp.NewScoresHandler(scoreService)
	gamesHandler := transportHttp.NewGamesHandler(sessionManager, gameRepo)

	// 5. Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", gamesHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/scores", scoresHandler.GetScores)
		api.GET("/scores/best", scoresHandler.GetBestScore)
		api.POST("/scores", scoresHandler.SubmitScore)

		api.GET("/watch", gamesHandler.GetLiveGames)
		api.GET("/games/:id", gamesHandler.GetGame)
	}

	router.GET("/ws", wsHandler.HandleWebSocket)

	// Serve static frontend files (SPA fallback)
	if _, err := os.Stat("./static"); err == nil {
		router.Static("/assets", "./static/assets")
		router.GET("/", func(c *gin.Context) {
			c.File("./static/index.html")
		})
		router.NoRoute(func(c *gin.Context) {
			path := "./static" + c.Request.URL.Path
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				c.File(path)
				return
			}
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/assets/") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File("./static/index.html")
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by srv.Shutdown
	connManager.CloseAll()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
