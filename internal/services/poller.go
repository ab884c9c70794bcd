package services

import (
  "context"
  "fmt"
  "time"

  "github.com/basespeak/basespeak-backend/internal/logger"
)

const (
  jobPollInterval = 2 * time.Second
  jobMaxPolls     = 30
)

// JobPoller waits on a submitted lip-sync job until it reaches a terminal
// state or the attempt budget runs out.
type JobPoller interface {
  WaitForJob(ctx context.Context, jobID string) (string, error)
}

type jobPoller struct {
  log      *logger.Logger
  lipsync  LipsyncService
  interval time.Duration
  maxPolls int
}

func NewJobPoller(log *logger.Logger, lipsync LipsyncService) JobPoller {
  return &jobPoller{
    log:      log.With("service", "JobPoller"),
    lipsync:  lipsync,
    interval: jobPollInterval,
    maxPolls: jobMaxPolls,
  }
}

// WaitForJob polls until done (returns the clip URL), error (returns an
// error), or the budget is exhausted (timeout error). Transport failures
// consume attempts from the same budget, so it never polls forever.
func (jp *jobPoller) WaitForJob(ctx context.Context, jobID string) (string, error) {
  for attempt := 0; attempt < jp.maxPolls; attempt++ {
    status, err := jp.lipsync.FetchJob(ctx, jobID)
    if err != nil {
      jp.log.Warn("lipsync poll transport failure", "jobID", jobID, "attempt", attempt, "error", err)
    } else {
      jp.log.Debug("lipsync poll", "jobID", jobID, "status", status.Status, "attempt", attempt)

      if status.Status == JobStateDone && status.Mp4URL != "" {
        return status.Mp4URL, nil
      }
      if status.Status == JobStateError {
        return "", fmt.Errorf("lipsync job %s failed: %s", jobID, status.Error)
      }
    }

    select {
    case <-ctx.Done():
      return "", ctx.Err()
    case <-time.After(jp.interval):
    }
  }
  return "", fmt.Errorf("lipsync job %s timed out after %d polls", jobID, jp.maxPolls)
}
