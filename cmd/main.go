package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ubc/tlef-engeai-sub001/internal/db"
	appHTTP "github.com/ubc/tlef-engeai-sub001/internal/http"
	"github.com/ubc/tlef-engeai-sub001/internal/http/handlers"
	"github.com/ubc/tlef-engeai-sub001/internal/http/middleware"
	"github.com/ubc/tlef-engeai-sub001/internal/observability"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/envutil"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/gcs"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/openai"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/qdrant"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment variables")
	}

	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	otelShutdown := observability.InitTracing(ctx, log, observability.Config{
		ServiceName: "engeai",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if otelShutdown != nil {
		defer func() { _ = otelShutdown(ctx) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	courseRepo := repos.NewCourseRepo(thePG, log)
	userRepo := repos.NewUserRepo(thePG, log)
	flagRepo := repos.NewFlagRepo(thePG, log)
	profileRepo := repos.NewStruggleProfileRepo(thePG, log)
	documentRepo := repos.NewCourseDocumentRepo(thePG, log)

	// External stores
	log.Info("Setting up external clients...")
	bucketService, err := gcs.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	qdrantCfg, err := qdrant.ResolveConfigFromEnv()
	if err != nil {
		log.Error("Could not resolve Qdrant config", "error", err)
		os.Exit(1)
	}
	vectorStore, err := qdrant.NewVectorStore(log, qdrantCfg)
	if err != nil {
		log.Error("Could not init vector store", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services...")
	storeNameService := services.NewStoreNameService(log, courseRepo)
	courseService := services.NewCourseService(log, courseRepo)
	identityService := services.NewIdentityService(log, userRepo, storeNameService)
	labelService := services.NewLabelService(log, openaiClient)
	flagService := services.NewFlagService(log, flagRepo, storeNameService)
	ledgerService := services.NewStruggleLedgerService(log, profileRepo, identityService, labelService, storeNameService)
	documentService := services.NewDocumentService(log, documentRepo, bucketService, openaiClient, vectorStore, storeNameService)
	indexService := services.NewIndexService(log, thePG)

	// Flag query indexes, best effort at boot.
	for _, result := range indexService.EnsureFlagIndexes(dbctx.Context{Ctx: ctx}) {
		if !result.Created {
			log.Warn("flag index not created", "index", result.Name, "error", result.Error)
		}
	}

	// Handlers
	log.Info("Setting up handlers...")
	courseHandler := handlers.NewCourseHandler(log, courseService)
	flagHandler := handlers.NewFlagHandler(log, flagService)
	ledgerHandler := handlers.NewLedgerHandler(log, ledgerService)
	documentHandler := handlers.NewDocumentHandler(log, documentService)
	adminHandler := handlers.NewAdminHandler(log, indexService)
	healthHandler := handlers.NewHealthHandler()

	// Middleware
	var authMiddleware *middleware.AuthMiddleware
	if jwtSecretKey := envutil.String("JWT_SECRET_KEY", ""); jwtSecretKey != "" {
		authMiddleware = middleware.NewAuthMiddleware(log, jwtSecretKey)
	} else {
		log.Warn("JWT_SECRET_KEY not set, API endpoints are unauthenticated")
	}

	// Router
	log.Info("Setting up router...")
	server := appHTTP.NewServer(appHTTP.RouterConfig{
		Log:             log,
		AuthMiddleware:  authMiddleware,
		CourseHandler:   courseHandler,
		FlagHandler:     flagHandler,
		LedgerHandler:   ledgerHandler,
		DocumentHandler: documentHandler,
		AdminHandler:    adminHandler,
		HealthHandler:   healthHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
