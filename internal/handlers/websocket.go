package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/gorilla/websocket"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/requestdata"
  "github.com/basespeak/basespeak-backend/internal/socket"
)

var upgrader = websocket.Upgrader{
  CheckOrigin: func(r *http.Request) bool {
    return true
  },
}

func WsHandler(hub *socket.Hub, log *logger.Logger) gin.HandlerFunc {
  return func(c *gin.Context) {
    ctx := c.Request.Context()

    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
      return
    }
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      log.Warn("Failed to upgrade to websocket", "error", err)
      return
    }
    client := socket.NewClient(conn, hub, log)

    // Clients start on their own user channel and subscribe to avatar
    // channels as chat screens open.
    hub.Subscribe(client, []string{"user:" + rd.UserID.String()})

    // The connection must outlive this handler; Run manages its own
    // lifetime rather than inheriting the request context.
    go client.Run()
  }
}
