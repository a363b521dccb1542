package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codelenshq/codelens/internal/handlers"
	"github.com/codelenshq/codelens/internal/middleware"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/internal/services"
	"github.com/codelenshq/codelens/internal/workers"
	"github.com/codelenshq/codelens/pkg/config"
	"github.com/codelenshq/codelens/pkg/database"
	"github.com/codelenshq/codelens/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(database.DB)
	quotaRepo := repositories.NewUserQuotaRepository(database.DB)
	projectRepo := repositories.NewProjectRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)
	docRepo := repositories.NewDocumentationRepository(database.DB)
	findingRepo := repositories.NewSecurityFindingRepository(database.DB)
	improvementRepo := repositories.NewCodeImprovementRepository(database.DB)
	chunkRepo := repositories.NewChunkRepository(database.DB)
	chatRepo := repositories.NewChatMessageRepository(database.DB)

	// Services
	userService := services.NewUserService(userRepo)
	quotaService := services.NewQuotaService(quotaRepo, config.AppConfig.Quota)
	storageService := services.NewStorageService(config.AppConfig.Storage.BasePath)
	githubService := services.NewGitHubService()
	analyzerService := services.NewAnalyzerService()
	completer := services.NewAnthropicService(config.AppConfig.Anthropic)
	embedder := services.NewOpenAIEmbeddingService(config.AppConfig.OpenAI)
	docService := services.NewDocumentationService(completer, docRepo)
	securityService := services.NewSecurityService(completer, findingRepo)
	qualityService := services.NewQualityService(completer, improvementRepo)
	indexerService := services.NewIndexerService(embedder, chunkRepo)
	projectService := services.NewProjectService(projectRepo, jobRepo, storageService, githubService, quotaService)
	chatService := services.NewChatService(completer, embedder, chunkRepo, chatRepo, quotaService)
	exportService := services.NewExportService(findingRepo, improvementRepo)
	pipelineService := services.NewPipelineService(
		projectRepo, docRepo, storageService, analyzerService,
		docService, securityService, qualityService, indexerService,
	)

	// Workers
	workerManager := workers.NewWorkerManager(jobRepo, pipelineService)
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	setupRoutes(router, userService, projectService, chatService, quotaService, exportService,
		docRepo, findingRepo, improvementRepo)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

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

	logger.Infof("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Infof("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	userService *services.UserService,
	projectService *services.ProjectService,
	chatService *services.ChatService,
	quotaService *services.QuotaService,
	exportService *services.ExportService,
	docRepo *repositories.DocumentationRepository,
	findingRepo *repositories.SecurityFindingRepository,
	improvementRepo *repositories.CodeImprovementRepository,
) {
	authHandler := handlers.NewAuthHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	analysisHandler := handlers.NewAnalysisHandler(projectService, exportService, docRepo, findingRepo, improvementRepo)
	chatHandler := handlers.NewChatHandler(projectService, chatService)
	quotaHandler := handlers.NewQuotaHandler(quotaService)
	healthHandler := handlers.NewHealthHandler(database.DB)

	router.GET("/health", healthHandler.Check)

	api := router.Group("/api/v1")

	// Auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Protected routes
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/me", authHandler.Me)
		authed.GET("/quota", quotaHandler.Status)

		authed.POST("/projects/upload", projectHandler.Upload)
		authed.POST("/projects/github", projectHandler.FromGitHub)
		authed.GET("/projects", projectHandler.List)
		authed.GET("/projects/:id", projectHandler.Get)
		authed.GET("/projects/:id/status", projectHandler.Status)
		authed.POST("/projects/:id/reprocess", projectHandler.Reprocess)
		authed.DELETE("/projects/:id", projectHandler.Delete)

		authed.GET("/projects/:id/documentation", analysisHandler.GetDocumentation)
		authed.PUT("/projects/:id/documentation", analysisHandler.UpdateDocumentation)
		authed.GET("/projects/:id/security", analysisHandler.ListFindings)
		authed.PATCH("/projects/:id/security/:findingId", analysisHandler.UpdateFindingStatus)
		authed.GET("/projects/:id/improvements", analysisHandler.ListImprovements)
		authed.PATCH("/projects/:id/improvements/:improvementId", analysisHandler.UpdateImprovementStatus)
		authed.GET("/projects/:id/summary", analysisHandler.Summary)
		authed.GET("/projects/:id/security/export", analysisHandler.ExportFindings)
		authed.GET("/projects/:id/improvements/export", analysisHandler.ExportImprovements)

		authed.POST("/projects/:id/chat", chatHandler.Ask)
		authed.GET("/projects/:id/chat", chatHandler.History)
	}
}
