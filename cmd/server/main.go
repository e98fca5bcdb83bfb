package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"personas/internal/handlers"
	"personas/internal/metrics"
	"personas/internal/middleware"
	"personas/internal/repositories"
	"personas/internal/services"
	"personas/pkg/config"
	"personas/pkg/database"
	"personas/pkg/logger"
)

func main() {
	logger.Init()

	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.URL); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	personaRepo := repositories.NewPersonaRepository(database.DB)
	generator := services.NewPersonaGenerator(0)
	personaService := services.NewPersonaService(personaRepo, generator)
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize router
	router := gin.Default()
	router.Use(middleware.RequestID())
	setupRoutes(router, personaService, appMetrics)

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, personaService *services.PersonaService, appMetrics *metrics.Metrics) {
	// Initialize handlers
	personaHandler := handlers.NewPersonaHandler(personaService, appMetrics)
	healthHandler := handlers.NewHealthHandler()

	personas := router.Group("/personas")
	{
		personas.POST("", personaHandler.CreatePersona)
		personas.GET("", personaHandler.ListPersonas)
		personas.DELETE("/reset", personaHandler.ResetPersonas)
		personas.POST("/poblar", personaHandler.PoblarPersonas)
		personas.GET("/estadisticas/dominios", personaHandler.EstadisticasDominios)
		personas.GET("/estadisticas/edades", personaHandler.EstadisticasEdades)
		personas.GET("/buscar", personaHandler.BuscarPersonas)
		personas.GET("/reporte/activas", personaHandler.ReporteActivas)
		personas.GET("/export", personaHandler.ExportPersonas)
		personas.GET("/:id", personaHandler.GetPersona)
		personas.PUT("/:id", personaHandler.UpdatePersona)
		personas.DELETE("/:id", personaHandler.DeletePersona)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
