package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/basespeak/basespeak-backend/internal/handlers"
  "github.com/basespeak/basespeak-backend/internal/middleware"
)

type RouterConfig struct {
  IdentityMiddleware *middleware.IdentityMiddleware
  ReplyHandler       *handlers.ReplyHandler
  JobHandler         *handlers.JobHandler
  AvatarHandler      *handlers.AvatarHandler
  WsHandler          gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:8081",
      "http://localhost:19006",
      "https://basespeak.app",
      "https://www.basespeak.app",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Protected Routes
  //-----------------------------------------
  api := router.Group("/api")
  api.Use(cfg.IdentityMiddleware.RequireIdentity())

  api.POST("/reply", cfg.ReplyHandler.PostReply)
  api.GET("/job/:id", cfg.JobHandler.GetJobStatus)
  api.GET("/status", handlers.VendorStatus)
  api.GET("/ws", cfg.WsHandler)

  //Avatars
  api.GET("/avatars", cfg.AvatarHandler.ListAvatars)
  api.GET("/avatars/:avatarId/messages", cfg.AvatarHandler.ListMessages)
  api.POST("/upload-base", cfg.AvatarHandler.UploadBase)
  api.PATCH("/avatars/:avatarId", cfg.AvatarHandler.UpdateAvatar)

  return router
}
