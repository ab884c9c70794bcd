package main

import (
  "fmt"
  "os"

  "github.com/basespeak/basespeak-backend/internal/db"
  "github.com/basespeak/basespeak-backend/internal/handlers"
  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/middleware"
  "github.com/basespeak/basespeak-backend/internal/repos"
  "github.com/basespeak/basespeak-backend/internal/server"
  "github.com/basespeak/basespeak-backend/internal/services"
  "github.com/basespeak/basespeak-backend/internal/socket"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  log.Debug("Environment variables loaded for Main :)",
    "redisAddress", redisAddress,
  )

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init Postgres", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  avatarRepo := repos.NewAvatarRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log)
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Redis PubSub
  log.Info("Setting Up Redis PubSub From Main Now :)")
  redisChanName := "basespeak_hub_broadcast"
  redisPubSub, err := socket.NewRedisPubSub(log, redisAddress, redisPassword, redisChanName)
  if err != nil {
    log.Warn("Failed to init redis pubsub", "error", err)
  } else {
    if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }
  log.Info("Successfully Set up Redis Pub Sub From Main :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  posterService, err := services.NewPosterService(log, bucketService)
  if err != nil {
    log.Warn("Could not init PosterService", "error", err)
  }
  llmService, err := services.NewLLMService(log)
  if err != nil {
    log.Warn("Could not init LLMService", "error", err)
  }
  speechService, err := services.NewSpeechService(log)
  if err != nil {
    log.Warn("Could not init SpeechService", "error", err)
  }
  lipsyncService, err := services.NewLipsyncService(log)
  if err != nil {
    log.Warn("Could not init LipsyncService", "error", err)
  }
  jobPoller := services.NewJobPoller(log, lipsyncService)
  jobTracker := services.NewJobTracker(log, lipsyncService, messageRepo, wsHub)
  replyService := services.NewReplyService(thePG, log, avatarRepo, messageRepo, llmService, speechService, lipsyncService, jobPoller, bucketService, wsHub)
  jobService := services.NewJobService(log, messageRepo, lipsyncService, bucketService, jobTracker)
  avatarService, err := services.NewAvatarService(thePG, log, avatarRepo, messageRepo, bucketService, posterService)
  if err != nil {
    log.Error("Fatal error: Cannot init AvatarService", "error", err)
    os.Exit(1)
  }
  log.Info("Services Set Up From Main Successful :)")

  //  Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  replyHandler := handlers.NewReplyHandler(replyService)
  jobHandler := handlers.NewJobHandler(jobService)
  avatarHandler := handlers.NewAvatarHandler(avatarService)
  wsHandler := handlers.WsHandler(wsHub, log)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  identityMiddleware := middleware.NewIdentityMiddleware(log, jwtSecretKey)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    IdentityMiddleware: identityMiddleware,
    ReplyHandler:       replyHandler,
    JobHandler:         jobHandler,
    AvatarHandler:      avatarHandler,
    WsHandler:          wsHandler,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }

  // On Shutdown
  jobTracker.Close()
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}
