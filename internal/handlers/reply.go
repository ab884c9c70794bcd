package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/basespeak/basespeak-backend/internal/requestdata"
  "github.com/basespeak/basespeak-backend/internal/services"
  "github.com/basespeak/basespeak-backend/internal/types"
)

type ReplyHandler struct {
  replyService services.ReplyService
}

func NewReplyHandler(replyService services.ReplyService) *ReplyHandler {
  return &ReplyHandler{replyService: replyService}
}

func (rh *ReplyHandler) PostReply(c *gin.Context) {
  ctx := c.Request.Context()
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user context"})
    return
  }

  var payload types.ReplyPayload
  if err := c.ShouldBindJSON(&payload); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  resp, err := rh.replyService.HandleReply(ctx, rd.UserID, payload)
  if err != nil {
    switch {
    case errors.Is(err, services.ErrMissingField):
      c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    case errors.Is(err, services.ErrAvatarNotFound):
      c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
    default:
      c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process reply"})
    }
    return
  }
  c.JSON(http.StatusOK, resp)
}
