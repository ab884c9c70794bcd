package handlers

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/basespeak/basespeak-backend/internal/requestdata"
  "github.com/basespeak/basespeak-backend/internal/services"
  "github.com/basespeak/basespeak-backend/internal/types"
)

type stubReplyService struct {
  resp types.ReplyResponse
  err  error
}

func (s *stubReplyService) HandleReply(ctx context.Context, userID uuid.UUID, payload types.ReplyPayload) (types.ReplyResponse, error) {
  return s.resp, s.err
}

func newReplyRouter(svc services.ReplyService, withIdentity bool) *gin.Engine {
  gin.SetMode(gin.TestMode)
  router := gin.New()
  handler := NewReplyHandler(svc)
  router.POST("/api/reply", func(c *gin.Context) {
    if withIdentity {
      ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: uuid.New()})
      c.Request = c.Request.WithContext(ctx)
    }
    handler.PostReply(c)
  })
  return router
}

func postReply(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
  payload, _ := json.Marshal(body)
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodPost, "/api/reply", bytes.NewReader(payload))
  req.Header.Set("Content-Type", "application/json")
  router.ServeHTTP(w, req)
  return w
}

func TestPostReplyOK(t *testing.T) {
  want := types.ReplyResponse{
    ReplyText: "hello!",
    AudioB64:  "YXVkaW8=",
    Mime:      "audio/mpeg",
    MessageID: uuid.New(),
    VideoURLs: []string{"https://cdn/c0.mp4"},
  }
  router := newReplyRouter(&stubReplyService{resp: want}, true)

  w := postReply(router, types.ReplyPayload{AvatarID: uuid.New().String(), UserText: "hi"})
  require.Equal(t, http.StatusOK, w.Code)

  var got types.ReplyResponse
  require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
  assert.Equal(t, want, got)
}

func TestPostReplyMissingIdentity(t *testing.T) {
  router := newReplyRouter(&stubReplyService{}, false)
  w := postReply(router, types.ReplyPayload{AvatarID: uuid.New().String(), UserText: "hi"})
  assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostReplyMissingField(t *testing.T) {
  svc := &stubReplyService{err: fmt.Errorf("%w: userText", services.ErrMissingField)}
  router := newReplyRouter(svc, true)
  w := postReply(router, types.ReplyPayload{AvatarID: uuid.New().String()})
  assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostReplyAvatarNotFound(t *testing.T) {
  svc := &stubReplyService{err: services.ErrAvatarNotFound}
  router := newReplyRouter(svc, true)
  w := postReply(router, types.ReplyPayload{AvatarID: uuid.New().String(), UserText: "hi"})
  assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostReplyInternalError(t *testing.T) {
  svc := &stubReplyService{err: fmt.Errorf("db down")}
  router := newReplyRouter(svc, true)
  w := postReply(router, types.ReplyPayload{AvatarID: uuid.New().String(), UserText: "hi"})
  assert.Equal(t, http.StatusInternalServerError, w.Code)

  // Internal details never leak to the client.
  assert.NotContains(t, w.Body.String(), "db down")
}
