package services

import (
  "context"
  "sync"
  "time"

  "github.com/google/uuid"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/repos"
  "github.com/basespeak/basespeak-backend/internal/socket"
  "github.com/basespeak/basespeak-backend/internal/types"
)

const (
  trackerPollInterval     = 2 * time.Second
  trackerMaxTransportErrs = 10
)

// JobTracker follows legacy single-job renders in the background: one
// cancellable poll loop per job id, applying terminal results to the owning
// message row and pushing the update over the socket hub.
type JobTracker interface {
  Track(jobID string, messageID uuid.UUID)
  Cancel(jobID string)
  Close()
}

type jobTracker struct {
  log         *logger.Logger
  lipsync     LipsyncService
  messageRepo repos.MessageRepo
  hub         *socket.Hub

  mu       sync.Mutex
  trackers map[string]context.CancelFunc
  closed   bool
}

func NewJobTracker(log *logger.Logger, lipsync LipsyncService, messageRepo repos.MessageRepo, hub *socket.Hub) JobTracker {
  return &jobTracker{
    log:         log.With("service", "JobTracker"),
    lipsync:     lipsync,
    messageRepo: messageRepo,
    hub:         hub,
    trackers:    make(map[string]context.CancelFunc),
  }
}

// Track starts a poll loop for the job unless one is already running for the
// same id, in which case it is a no-op.
func (jt *jobTracker) Track(jobID string, messageID uuid.UUID) {
  jt.mu.Lock()
  defer jt.mu.Unlock()
  if jt.closed {
    return
  }
  if _, exists := jt.trackers[jobID]; exists {
    jt.log.Debug("tracker already running for job", "jobID", jobID)
    return
  }

  ctx, cancel := context.WithCancel(context.Background())
  jt.trackers[jobID] = cancel
  go jt.pollLoop(ctx, jobID, messageID)
}

func (jt *jobTracker) Cancel(jobID string) {
  jt.mu.Lock()
  defer jt.mu.Unlock()
  if cancel, ok := jt.trackers[jobID]; ok {
    cancel()
    delete(jt.trackers, jobID)
  }
}

func (jt *jobTracker) Close() {
  jt.mu.Lock()
  defer jt.mu.Unlock()
  jt.closed = true
  for jobID, cancel := range jt.trackers {
    cancel()
    delete(jt.trackers, jobID)
  }
}

func (jt *jobTracker) remove(jobID string) {
  jt.mu.Lock()
  defer jt.mu.Unlock()
  if cancel, ok := jt.trackers[jobID]; ok {
    cancel()
    delete(jt.trackers, jobID)
  }
}

func (jt *jobTracker) pollLoop(ctx context.Context, jobID string, messageID uuid.UUID) {
  defer jt.remove(jobID)

  // Terminal state already persisted means there is nothing to poll.
  if msg, err := jt.messageRepo.GetByID(ctx, nil, messageID); err == nil && msg.Terminal() {
    jt.log.Debug("message already terminal, skipping tracker", "jobID", jobID, "messageID", messageID)
    return
  }

  transportErrs := 0
  for {
    status, err := jt.lipsync.FetchJob(ctx, jobID)
    if err != nil {
      if ctx.Err() != nil {
        return
      }
      transportErrs++
      jt.log.Warn("job poll transport failure", "jobID", jobID, "consecutive", transportErrs, "error", err)
      if transportErrs >= trackerMaxTransportErrs {
        jt.applyError(ctx, jobID, messageID)
        return
      }
    } else {
      transportErrs = 0
      jt.log.Debug("job poll", "jobID", jobID, "status", status.Status)

      if status.Status == JobStateDone && status.Mp4URL != "" {
        jt.applyDone(ctx, jobID, messageID, status.Mp4URL)
        return
      }
      if status.Status == JobStateError {
        jt.log.Warn("job reported error", "jobID", jobID, "error", status.Error)
        jt.applyError(ctx, jobID, messageID)
        return
      }
    }

    select {
    case <-ctx.Done():
      return
    case <-time.After(trackerPollInterval):
    }
  }
}

func (jt *jobTracker) applyDone(ctx context.Context, jobID string, messageID uuid.UUID, mp4URL string) {
  msg, err := jt.messageRepo.GetByID(ctx, nil, messageID)
  if err != nil {
    jt.log.Warn("failed to load message for done job", "jobID", jobID, "messageID", messageID, "error", err)
    return
  }
  msg.Status = types.MessageStatusDone
  msg.SetVideoURLs([]string{mp4URL})
  updated, err := jt.messageRepo.Update(ctx, nil, msg)
  if err != nil {
    jt.log.Warn("failed to persist done job result", "jobID", jobID, "messageID", messageID, "error", err)
    return
  }
  jt.broadcast(ctx, updated)
}

func (jt *jobTracker) applyError(ctx context.Context, jobID string, messageID uuid.UUID) {
  msg, err := jt.messageRepo.GetByID(ctx, nil, messageID)
  if err != nil {
    jt.log.Warn("failed to load message for failed job", "jobID", jobID, "messageID", messageID, "error", err)
    return
  }
  msg.Status = types.MessageStatusError
  updated, err := jt.messageRepo.Update(ctx, nil, msg)
  if err != nil {
    jt.log.Warn("failed to persist failed job result", "jobID", jobID, "messageID", messageID, "error", err)
    return
  }
  jt.broadcast(ctx, updated)
}

func (jt *jobTracker) broadcast(ctx context.Context, msg *types.Message) {
  if jt.hub == nil {
    return
  }
  jt.hub.BroadcastGlobal(ctx, socket.Message{
    Channel: "avatar:" + msg.AvatarID.String(),
    Payload: msg,
  })
}
