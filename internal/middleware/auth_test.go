package middleware

import (
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/requestdata"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *uuid.UUID) {
  t.Helper()
  gin.SetMode(gin.TestMode)

  var seen uuid.UUID
  im := NewIdentityMiddleware(logger.NewNop(), testSecret)
  router := gin.New()
  router.GET("/probe", im.RequireIdentity(), func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    require.NotNil(t, rd)
    seen = rd.UserID
    c.Status(http.StatusOK)
  })
  return router, &seen
}

func signToken(t *testing.T, subject, secret string) string {
  t.Helper()
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
  signed, err := token.SignedString([]byte(secret))
  require.NoError(t, err)
  return signed
}

func TestRequireIdentityRejectsMissing(t *testing.T) {
  router, _ := newTestRouter(t)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireIdentityAcceptsUserIDHeader(t *testing.T) {
  router, seen := newTestRouter(t)
  userID := uuid.New()

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("X-User-ID", userID.String())
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusOK, w.Code)
  assert.Equal(t, userID, *seen)
}

func TestRequireIdentityRejectsMalformedUserID(t *testing.T) {
  router, _ := newTestRouter(t)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("X-User-ID", "not-a-uuid")
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireIdentityAcceptsBearerToken(t *testing.T) {
  router, seen := newTestRouter(t)
  userID := uuid.New()

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("Authorization", "Bearer "+signToken(t, userID.String(), testSecret))
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusOK, w.Code)
  assert.Equal(t, userID, *seen)
}

func TestRequireIdentityRejectsBadSignature(t *testing.T) {
  router, _ := newTestRouter(t)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New().String(), "wrong-secret"))
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireIdentityRejectsNonUUIDSubject(t *testing.T) {
  router, _ := newTestRouter(t)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/probe", nil)
  req.Header.Set("Authorization", "Bearer "+signToken(t, "alice", testSecret))
  router.ServeHTTP(w, req)

  assert.Equal(t, http.StatusUnauthorized, w.Code)
}
