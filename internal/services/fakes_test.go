package services

import (
  "context"
  "fmt"
  "io"
  "sync"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/basespeak/basespeak-backend/internal/types"
)

// fakeAvatarRepo serves a fixed set of avatars keyed by id.
type fakeAvatarRepo struct {
  avatars map[uuid.UUID]*types.Avatar
}

func newFakeAvatarRepo(avatars ...*types.Avatar) *fakeAvatarRepo {
  repo := &fakeAvatarRepo{avatars: make(map[uuid.UUID]*types.Avatar)}
  for _, a := range avatars {
    repo.avatars[a.ID] = a
  }
  return repo
}

func (f *fakeAvatarRepo) Create(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error) {
  f.avatars[avatar.ID] = avatar
  return avatar, nil
}

func (f *fakeAvatarRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) (*types.Avatar, error) {
  avatar, ok := f.avatars[avatarID]
  if !ok || avatar.UserID != userID {
    return nil, gorm.ErrRecordNotFound
  }
  return avatar, nil
}

func (f *fakeAvatarRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Avatar, error) {
  var out []types.Avatar
  for _, a := range f.avatars {
    if a.UserID == userID {
      out = append(out, *a)
    }
  }
  return out, nil
}

func (f *fakeAvatarRepo) Update(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error) {
  f.avatars[avatar.ID] = avatar
  return avatar, nil
}

// fakeMessageRepo is an in-memory message store that records creation order.
type fakeMessageRepo struct {
  mu       sync.Mutex
  messages map[uuid.UUID]*types.Message
  created  []*types.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
  return &fakeMessageRepo{messages: make(map[uuid.UUID]*types.Message)}
}

func (f *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  copied := *msg
  f.messages[msg.ID] = &copied
  f.created = append(f.created, &copied)
  return msg, nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) (*types.Message, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  msg, ok := f.messages[messageID]
  if !ok {
    return nil, gorm.ErrRecordNotFound
  }
  copied := *msg
  return &copied, nil
}

func (f *fakeMessageRepo) GetByAvatarID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) ([]types.Message, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  var out []types.Message
  for _, msg := range f.created {
    if msg.UserID == userID && msg.AvatarID == avatarID {
      out = append(out, *msg)
    }
  }
  return out, nil
}

func (f *fakeMessageRepo) GetByJobID(ctx context.Context, tx *gorm.DB, jobID string) (*types.Message, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  for _, msg := range f.messages {
    if msg.JobID != nil && *msg.JobID == jobID {
      copied := *msg
      return &copied, nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (f *fakeMessageRepo) Update(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  copied := *msg
  f.messages[msg.ID] = &copied
  return msg, nil
}

func (f *fakeMessageRepo) byID(messageID uuid.UUID) *types.Message {
  f.mu.Lock()
  defer f.mu.Unlock()
  return f.messages[messageID]
}

// stubLLM echoes a canned reply and records the clean-mode flags it was
// called with.
type stubLLM struct {
  mu         sync.Mutex
  reply      string
  cleanCalls []bool
}

func (s *stubLLM) GenerateReply(ctx context.Context, userText, persona string, cleanMode bool) string {
  s.mu.Lock()
  s.cleanCalls = append(s.cleanCalls, cleanMode)
  s.mu.Unlock()
  return s.reply
}

// stubSpeech hands back the same audio for every call.
type stubSpeech struct {
  mu    sync.Mutex
  calls []string
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, voicePreset string, speed, pitch *float64) SpeechResult {
  s.mu.Lock()
  s.calls = append(s.calls, text)
  s.mu.Unlock()
  return SpeechResult{Audio: []byte("audio:" + text), Mime: "audio/mpeg", DurationMs: 1200}
}

// stubLipsync scripts Submit and FetchJob behavior per call index.
type stubLipsync struct {
  mu         sync.Mutex
  submits    []LipsyncSubmitOptions
  submitFn   func(call int, opts LipsyncSubmitOptions) (LipsyncSubmitResult, error)
  fetchCalls int
  fetchFn    func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error)
  configured bool
}

func (s *stubLipsync) Submit(ctx context.Context, opts LipsyncSubmitOptions) (LipsyncSubmitResult, error) {
  s.mu.Lock()
  call := len(s.submits)
  s.submits = append(s.submits, opts)
  s.mu.Unlock()
  if s.submitFn == nil {
    return LipsyncSubmitResult{}, nil
  }
  return s.submitFn(call, opts)
}

func (s *stubLipsync) FetchJob(ctx context.Context, jobID string) (LipsyncJobStatus, error) {
  s.mu.Lock()
  call := s.fetchCalls
  s.fetchCalls++
  s.mu.Unlock()
  if s.fetchFn == nil {
    return LipsyncJobStatus{Status: JobStateQueued}, nil
  }
  return s.fetchFn(ctx, call, jobID)
}

func (s *stubLipsync) Configured() bool {
  return s.configured
}

func (s *stubLipsync) fetchCount() int {
  s.mu.Lock()
  defer s.mu.Unlock()
  return s.fetchCalls
}

// stubPoller resolves job ids through a fixed table.
type stubPoller struct {
  urls map[string]string
  errs map[string]error
}

func (s *stubPoller) WaitForJob(ctx context.Context, jobID string) (string, error) {
  if err, ok := s.errs[jobID]; ok {
    return "", err
  }
  if url, ok := s.urls[jobID]; ok {
    return url, nil
  }
  return "", fmt.Errorf("no scripted result for job %s", jobID)
}

// stubBucket records uploads and mints deterministic URLs.
type stubBucket struct {
  mu      sync.Mutex
  uploads []string
  fail    bool
}

func (s *stubBucket) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  if s.fail {
    return "", fmt.Errorf("bucket unavailable")
  }
  s.uploads = append(s.uploads, key)
  return "https://cdn.test/" + key, nil
}

func (s *stubBucket) GetPublicURL(key string) string {
  return "https://cdn.test/" + key
}
