package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toloka2web/auth"
	"toloka2web/cli"
	"toloka2web/config"
	"toloka2web/database"
	"toloka2web/handlers"
	"toloka2web/iniconf"
	"toloka2web/models"
	"toloka2web/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Configure log format
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Check if CLI mode is requested
	if config.Settings.CLIMode {
		cli.Run(config.Settings.CLIServer)
		return
	}

	log.Println("Toloka2Web starting up...")

	// Initialize databases
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.InitCatalogDB(); err != nil {
		log.Printf("Warning: catalog database unavailable: %v", err)
	}

	// Initialize services
	service.InitServices(database.DB, database.CatalogDB)

	// First-run bootstrap: file-to-database, then seeded defaults
	if err := bootstrap(); err != nil {
		log.Fatalf("Failed to bootstrap data: %v", err)
	}

	// Prune revoked tokens daily
	go pruneRevokedTokens()

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.Settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Minimal landing page
	r.GET("/", handlers.Index)

	// Image proxy stays outside /api so frontends can use it as a plain img src
	r.GET("/image", handlers.ProxyImage)

	// API routes
	api := r.Group("/api")
	{
		// Public auth routes
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)
		api.POST("/auth/refresh", handlers.Refresh)
		api.POST("/auth/logout", handlers.Logout)
		api.POST("/auth/validate", handlers.Validate)

		// Health route
		api.GET("/health", handlers.HealthCheck)

		// Any authenticated identity
		authed := api.Group("", auth.RequireAuth(database.DB))
		{
			authed.GET("/auth/me", handlers.Me)
			authed.GET("/auth/check", handlers.Check)
			authed.POST("/auth/change-password", handlers.ChangePassword)

			// Release routes
			authed.GET("/releases", handlers.ListReleases)
			authed.POST("/releases", handlers.AddRelease)
			authed.PUT("/releases", handlers.EditRelease)
			authed.DELETE("/releases", handlers.DeleteRelease)
			authed.POST("/releases/update", handlers.UpdateReleases)
			authed.GET("/releases/torrents", handlers.ReleaseTorrents)
			authed.GET("/releases/:hash", handlers.ReleaseByHash)

			// Tracker routes
			authed.GET("/toloka", handlers.TolokaSearch)
			authed.POST("/toloka", handlers.TolokaAdd)
			authed.GET("/toloka/:id", handlers.TolokaDetail)

			// Streaming-site routes
			authed.GET("/stream", handlers.StreamSearch)
			authed.POST("/stream", handlers.StreamAdd)
			authed.POST("/stream/details", handlers.StreamDetails)

			// Metadata routes
			authed.GET("/mal/search", handlers.MALSearch)
			authed.GET("/mal/detail/:id", handlers.MALDetail)
			authed.GET("/tmdb/search", handlers.TMDBSearch)
			authed.GET("/tmdb/detail/:id", handlers.TMDBDetail)
			authed.GET("/tmdb/trending", handlers.TMDBTrending)

			// Local catalog routes
			authed.GET("/anime", handlers.ListAnime)
			authed.GET("/anime/:id", handlers.GetAnime)
			authed.GET("/anime/:id/studios", handlers.AnimeStudios)
			authed.GET("/studio", handlers.ListStudios)
			authed.GET("/studio/:id", handlers.GetStudio)
			authed.GET("/studio/:id/anime", handlers.StudioAnime)

			// Aggregated search
			authed.GET("/search", handlers.MultiSearch)

			// Own profile
			authed.GET("/profile", handlers.Profile)
			authed.PUT("/profile", handlers.UpdateProfile)
		}

		// Admin only
		admin := api.Group("", auth.RequireAdmin(database.DB))
		{
			admin.GET("/settings", handlers.ListSettings)
			admin.POST("/settings", handlers.AddSetting)
			admin.POST("/settings/:id", handlers.UpdateSetting)
			admin.DELETE("/settings/:id", handlers.DeleteSetting)
			admin.POST("/settings/sync", handlers.SyncSettings)

			admin.GET("/users", handlers.ListUsers)
			admin.PUT("/users/:id", handlers.UpdateUser)
			admin.DELETE("/users/:id", handlers.DeleteUser)
		}
	}

	// Find an available port
	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", config.Settings.Host, port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Toloka2Web shutting down...")

	// Close database connections
	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// bootstrap imports the INI mirrors on first run. The database stays
// authoritative afterward; every later mutation re-exports to file.
func bootstrap() error {
	var settingCount int64
	if err := database.DB.Model(&models.AppSetting{}).Count(&settingCount).Error; err != nil {
		return err
	}
	if settingCount == 0 {
		if err := iniconf.ImportSettings(database.DB, config.Settings.AppINIPath); err != nil {
			return err
		}
		if err := service.GlobalServices.Setting.SeedDefaults(); err != nil {
			return err
		}
		log.Printf("Bootstrapped settings from %s", config.Settings.AppINIPath)
	}

	var releaseCount int64
	if err := database.DB.Model(&models.Release{}).Count(&releaseCount).Error; err != nil {
		return err
	}
	if releaseCount == 0 {
		if err := iniconf.ImportReleases(database.DB, config.Settings.TitlesINIPath); err != nil {
			return err
		}
		log.Printf("Bootstrapped releases from %s", config.Settings.TitlesINIPath)
	}

	return nil
}

// pruneRevokedTokens drops revocation records past the retention window,
// once at startup and then daily.
func pruneRevokedTokens() {
	retention := time.Duration(config.Settings.RevokedTokenRetentionDays) * 24 * time.Hour

	prune := func() {
		removed, err := auth.PruneRevokedTokens(database.DB, retention)
		if err != nil {
			log.Printf("Failed to prune revoked tokens: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Pruned %d revoked tokens", removed)
		}
	}

	prune()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		prune()
	}
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		addr := fmt.Sprintf("%s:%d", config.Settings.Host, port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port
		}
	}
	return startPort
}
