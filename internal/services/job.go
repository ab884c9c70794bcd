package services

import (
  "context"
  "errors"
  "fmt"
  "io"
  "net/http"
  "time"

  "gorm.io/gorm"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/repos"
  "github.com/basespeak/basespeak-backend/internal/types"
)

var ErrJobNotFound = errors.New("job not found")

// JobService answers the legacy single-job polling endpoint. Terminal results
// are served from the message store without touching the vendor; fresh
// completions are downloaded, re-uploaded to our bucket, and persisted.
type JobService interface {
  GetJobStatus(ctx context.Context, jobID string) (types.JobStatusResponse, error)
}

type jobService struct {
  log         *logger.Logger
  client      *http.Client
  messageRepo repos.MessageRepo
  lipsync     LipsyncService
  bucket      BucketService
  tracker     JobTracker
}

func NewJobService(log *logger.Logger, messageRepo repos.MessageRepo, lipsync LipsyncService, bucket BucketService, tracker JobTracker) JobService {
  return &jobService{
    log:         log.With("service", "JobService"),
    client:      &http.Client{Timeout: 60 * time.Second},
    messageRepo: messageRepo,
    lipsync:     lipsync,
    bucket:      bucket,
    tracker:     tracker,
  }
}

func (js *jobService) GetJobStatus(ctx context.Context, jobID string) (types.JobStatusResponse, error) {
  msg, err := js.messageRepo.GetByJobID(ctx, nil, jobID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return types.JobStatusResponse{}, ErrJobNotFound
    }
    return types.JobStatusResponse{}, err
  }

  // Idempotent re-poll: a finished job answers from the store, no vendor call.
  if msg.Status == types.MessageStatusDone && msg.VideoURL != "" {
    return types.JobStatusResponse{
      Status:    string(JobStateDone),
      Mp4URL:    msg.VideoURL,
      MessageID: &msg.ID,
    }, nil
  }

  status, err := js.lipsync.FetchJob(ctx, jobID)
  if err != nil {
    return types.JobStatusResponse{}, fmt.Errorf("failed to poll lipsync vendor: %w", err)
  }

  if status.Status == JobStateError {
    js.markError(ctx, msg)
    errMsg := status.Error
    if errMsg == "" {
      errMsg = "lipsync job failed"
    }
    return types.JobStatusResponse{Status: string(JobStateError), Error: errMsg}, nil
  }

  if status.Status == JobStateDone && status.Mp4URL != "" {
    finalURL, err := js.persistClip(ctx, msg, status.Mp4URL)
    if err != nil {
      js.log.Warn("failed to persist rendered clip", "jobID", jobID, "error", err)
      js.markError(ctx, msg)
      return types.JobStatusResponse{Status: string(JobStateError), Error: "failed to persist rendered clip"}, nil
    }
    return types.JobStatusResponse{
      Status:    string(JobStateDone),
      Mp4URL:    finalURL,
      MessageID: &msg.ID,
    }, nil
  }

  // Still in flight. Keep following it server-side so the clip lands even
  // if the client stops polling.
  if js.tracker != nil {
    js.tracker.Track(jobID, msg.ID)
  }
  return types.JobStatusResponse{Status: string(status.Status), Mp4URL: status.Mp4URL}, nil
}

// persistClip downloads the vendor-hosted clip and re-uploads it to our
// bucket so the URL outlives the vendor's retention window. Without a bucket
// the vendor URL is persisted as-is.
func (js *jobService) persistClip(ctx context.Context, msg *types.Message, vendorURL string) (string, error) {
  if js.bucket == nil {
    msg.Status = types.MessageStatusDone
    msg.SetVideoURLs([]string{vendorURL})
    if _, err := js.messageRepo.Update(ctx, nil, msg); err != nil {
      return "", err
    }
    return vendorURL, nil
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodGet, vendorURL, nil)
  if err != nil {
    return "", err
  }
  resp, err := js.client.Do(req)
  if err != nil {
    return "", fmt.Errorf("failed to download rendered clip: %w", err)
  }
  defer resp.Body.Close()
  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    return "", fmt.Errorf("clip download HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }

  contentType := resp.Header.Get("Content-Type")
  if contentType == "" {
    contentType = "video/mp4"
  }
  targetKey := fmt.Sprintf("%s/%s.mp4", msg.UserID, msg.ID)
  finalURL, err := js.bucket.UploadFile(ctx, targetKey, resp.Body, contentType)
  if err != nil {
    return "", err
  }
  if finalURL == "" {
    finalURL = vendorURL
  }

  msg.Status = types.MessageStatusDone
  msg.VideoPath = targetKey
  msg.SetVideoURLs([]string{finalURL})
  if _, err := js.messageRepo.Update(ctx, nil, msg); err != nil {
    return "", err
  }
  return finalURL, nil
}

func (js *jobService) markError(ctx context.Context, msg *types.Message) {
  msg.Status = types.MessageStatusError
  if _, err := js.messageRepo.Update(ctx, nil, msg); err != nil {
    js.log.Warn("failed to mark message as errored", "messageID", msg.ID, "error", err)
  }
}
