package handlers

import (
  "errors"
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/basespeak/basespeak-backend/internal/errordata"
  "github.com/basespeak/basespeak-backend/internal/requestdata"
  "github.com/basespeak/basespeak-backend/internal/services"
  "github.com/basespeak/basespeak-backend/internal/types"
)

const maxBaseUploadBytes = 80 << 20

type AvatarHandler struct {
  avatarService services.AvatarService
}

func NewAvatarHandler(avatarService services.AvatarService) *AvatarHandler {
  return &AvatarHandler{avatarService: avatarService}
}

func (ah *AvatarHandler) ListAvatars(c *gin.Context) {
  ctx := c.Request.Context()
  rd := requestdata.GetRequestData(ctx)
  avatars, err := ah.avatarService.ListAvatars(ctx, rd.UserID)
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load avatars"})
    return
  }
  c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func (ah *AvatarHandler) ListMessages(c *gin.Context) {
  ctx := c.Request.Context()
  rd := requestdata.GetRequestData(ctx)
  avatarID, err := uuid.Parse(c.Param("avatarId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar id"})
    return
  }
  messages, err := ah.avatarService.ListMessages(ctx, rd.UserID, avatarID)
  if err != nil {
    if errors.Is(err, services.ErrAvatarNotFound) {
      c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
    return
  }
  c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (ah *AvatarHandler) UploadBase(c *gin.Context) {
  ctx := errordata.WithErrorData(c.Request.Context())
  rd := requestdata.GetRequestData(ctx)

  file, header, err := c.Request.FormFile("file")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing base media file"})
    return
  }
  defer file.Close()
  if header.Size > maxBaseUploadBytes {
    c.JSON(http.StatusBadRequest, gin.H{"error": "base media too large"})
    return
  }
  data, err := io.ReadAll(io.LimitReader(file, maxBaseUploadBytes))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read base media"})
    return
  }

  name := c.PostForm("name")
  if name == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
    return
  }

  avatar, err := ah.avatarService.CreateFromBase(ctx, rd.UserID, services.CreateAvatarOptions{
    Name:           name,
    VoicePreset:    c.PostForm("voicePreset"),
    Persona:        c.PostForm("persona"),
    LipsyncQuality: types.LipsyncQuality(c.PostForm("lipsyncQuality")),
    Mime:           header.Header.Get("Content-Type"),
    Data:           data,
  })
  if err != nil {
    if errors.Is(err, services.ErrUnsupportedMedia) {
      c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
      return
    }
    errData := errordata.GetErrorData(ctx)
    if errData != nil && errData.HasMessage() {
      c.JSON(http.StatusBadRequest, gin.H{"error": errData.Message})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create avatar"})
    return
  }
  c.JSON(http.StatusOK, gin.H{"avatar": avatar})
}

func (ah *AvatarHandler) UpdateAvatar(c *gin.Context) {
  ctx := c.Request.Context()
  rd := requestdata.GetRequestData(ctx)
  avatarID, err := uuid.Parse(c.Param("avatarId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar id"})
    return
  }

  var patch types.AvatarPatch
  if err := c.ShouldBindJSON(&patch); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  avatar, err := ah.avatarService.UpdateAvatar(ctx, rd.UserID, avatarID, patch)
  if err != nil {
    if errors.Is(err, services.ErrAvatarNotFound) {
      c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
    return
  }
  c.JSON(http.StatusOK, gin.H{"avatar": avatar})
}
