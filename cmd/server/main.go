package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/99minutos/task-api/internal/api"
	"github.com/99minutos/task-api/internal/core/service"
	"github.com/99minutos/task-api/internal/infrastructure/auth"
	mongodb "github.com/99minutos/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/task-api/internal/infrastructure/db/redis"
	"github.com/99minutos/task-api/internal/infrastructure/http/handlers"
	"github.com/99minutos/task-api/internal/infrastructure/imaging"
	"github.com/99minutos/task-api/internal/infrastructure/mail"
	"github.com/99minutos/task-api/internal/infrastructure/queue"
	"github.com/99minutos/task-api/internal/pkg/config"
	"github.com/99minutos/task-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to redis")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, taskRepo); err != nil {
		log.Fatal().Err(err).Msg("cannot create indexes")
	}

	sender := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := queue.NewMailDispatcher(cfg.SMTP.Workers, sender, redisdb.NewDedupChecker(rdb), logger.Component("mail"))
	dispatcher.Start(ctx)

	userService := service.NewUserService(
		userRepo,
		taskRepo,
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
		imaging.NewAvatarProcessor(cfg.Avatar.Size),
		dispatcher,
		service.UserServiceConfig{AvatarMaxBytes: cfg.Avatar.MaxBytes},
		logger.Component("users"),
	)
	taskService := service.NewTaskService(taskRepo, logger.Component("tasks"))

	e := api.NewRouter(api.Deps{
		Users: userService,
		Tasks: taskService,
		Readiness: map[string]handlers.Pinger{
			"mongodb": mongodb.Pinger{Client: mongoClient},
			"redis":   redisdb.Pinger{Client: rdb},
		},
		AvatarMaxBytes: cfg.Avatar.MaxBytes,
		Log:            logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
