package main

import (
	"codekids"
	"codekids/internal/api/handler/endpoints"
	"codekids/internal/api/handler/middleware"
	"codekids/internal/api/models"
	"codekids/internal/api/service"
	"codekids/internal/realtime"
	"codekids/pkg"
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	codekids.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if codekids.GetConfig().Mode == "dev" {
		if err := codekids.DB.AutoMigrate(
			&models.Challenge{},
			&models.ChallengeProgress{},
			&models.Workspace{},
		); err != nil {
			codekids.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		codekids.Logger.Info().Msg("Database migrated successfully")

		if err := service.NewChallengeService().SeedDefaults(); err != nil {
			codekids.Logger.Fatal().Err(err).Msg("Failed to seed challenges")
		}
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(codekids.GetConfig().ApiPort))
	pkg.AssertNoError(err)
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLogger(codekids.Logger))

	stages := service.NewStageService(newFramePublisher(codekids.GetConfig()))
	defer stages.Close()

	initAPI(router, stages)

	codekids.Logger.Debug().Msgf("Starting CodeKids API on port %s", codekids.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		codekids.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func newFramePublisher(cfg codekids.AppConfig) realtime.FramePublisher {
	switch cfg.FrameBroker {
	case codekids.FrameBrokerNats:
		return realtime.NewFramePublisher(cfg.NatsConfig.URL, cfg.TenantID, codekids.Logger)
	case codekids.FrameBrokerMQTT:
		return realtime.NewMQTTFramePublisher(cfg.MQTTConfig.URL, cfg.MQTTConfig.ClientID, cfg.TenantID, codekids.Logger)
	default:
		codekids.Logger.Warn().Str("broker", cfg.FrameBroker).Msg("Frame publishing disabled")
		return realtime.NewNoopPublisher(codekids.Logger)
	}
}

func initAPI(router *graceful.Graceful, stages *service.StageService) {
	endpoints.BlockHandler(router)
	endpoints.ProgramHandler(router)
	endpoints.ChallengeHandler(router)
	endpoints.WorkspaceHandler(router)
	endpoints.StageHandler(router, stages)
}
