package middleware

import (
  "fmt"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/requestdata"
)

// IdentityMiddleware resolves the caller identity. Auth itself lives in an
// external service; this layer only trusts its artifacts: a signed bearer
// token whose subject is the user id, or the X-User-ID header the mobile app
// sends in development.
type IdentityMiddleware struct {
  log          *logger.Logger
  jwtSecretKey string
}

func NewIdentityMiddleware(log *logger.Logger, jwtSecretKey string) *IdentityMiddleware {
  middlewareLog := log.With("Middleware", "IdentityMiddleware")
  return &IdentityMiddleware{log: middlewareLog, jwtSecretKey: jwtSecretKey}
}

func (im *IdentityMiddleware) RequireIdentity() gin.HandlerFunc {
  return func(c *gin.Context) {
    userID, err := im.resolveUserID(c)
    if err != nil {
      im.log.Debug("rejecting request without identity", "error", err)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing user context"})
      return
    }

    ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

func (im *IdentityMiddleware) resolveUserID(c *gin.Context) (uuid.UUID, error) {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return im.userIDFromToken(authHeader[7:])
  }
  if header := c.GetHeader("X-User-ID"); header != "" {
    id, err := uuid.Parse(header)
    if err != nil {
      return uuid.Nil, fmt.Errorf("invalid X-User-ID header: %w", err)
    }
    return id, nil
  }
  return uuid.Nil, fmt.Errorf("no identity provided")
}

func (im *IdentityMiddleware) userIDFromToken(tokenString string) (uuid.UUID, error) {
  token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
    }
    return []byte(im.jwtSecretKey), nil
  })
  if err != nil {
    return uuid.Nil, fmt.Errorf("invalid token: %w", err)
  }
  subject, err := token.Claims.GetSubject()
  if err != nil || subject == "" {
    return uuid.Nil, fmt.Errorf("token missing subject")
  }
  id, err := uuid.Parse(subject)
  if err != nil {
    return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
  }
  return id, nil
}
