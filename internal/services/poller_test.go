package services

import (
  "context"
  "fmt"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/basespeak/basespeak-backend/internal/logger"
)

func newTestPoller(lipsync LipsyncService, maxPolls int) *jobPoller {
  return &jobPoller{
    log:      logger.NewNop(),
    lipsync:  lipsync,
    interval: time.Millisecond,
    maxPolls: maxPolls,
  }
}

func TestWaitForJobDone(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      if call < 2 {
        return LipsyncJobStatus{Status: JobStateRunning}, nil
      }
      return LipsyncJobStatus{Status: JobStateDone, Mp4URL: "https://cdn/out.mp4"}, nil
    },
  }

  jp := newTestPoller(lipsync, 10)
  url, err := jp.WaitForJob(context.Background(), "job-1")
  require.NoError(t, err)
  assert.Equal(t, "https://cdn/out.mp4", url)
  assert.Equal(t, 3, lipsync.fetchCount())
}

func TestWaitForJobVendorError(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      return LipsyncJobStatus{Status: JobStateError, Error: "face not detected"}, nil
    },
  }

  jp := newTestPoller(lipsync, 10)
  _, err := jp.WaitForJob(context.Background(), "job-1")
  require.Error(t, err)
  assert.Contains(t, err.Error(), "face not detected")
}

func TestWaitForJobTimesOut(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      return LipsyncJobStatus{Status: JobStateRunning}, nil
    },
  }

  jp := newTestPoller(lipsync, 5)
  _, err := jp.WaitForJob(context.Background(), "job-1")
  require.Error(t, err)
  assert.Contains(t, err.Error(), "timed out")
  assert.Equal(t, 5, lipsync.fetchCount())
}

func TestWaitForJobTransportFailuresConsumeBudget(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      return LipsyncJobStatus{}, fmt.Errorf("connection refused")
    },
  }

  jp := newTestPoller(lipsync, 4)
  _, err := jp.WaitForJob(context.Background(), "job-1")
  require.Error(t, err)
  assert.Equal(t, 4, lipsync.fetchCount())
}

func TestWaitForJobRecoversAfterTransportFailure(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      if call == 0 {
        return LipsyncJobStatus{}, fmt.Errorf("connection refused")
      }
      return LipsyncJobStatus{Status: JobStateDone, Mp4URL: "https://cdn/out.mp4"}, nil
    },
  }

  jp := newTestPoller(lipsync, 10)
  url, err := jp.WaitForJob(context.Background(), "job-1")
  require.NoError(t, err)
  assert.Equal(t, "https://cdn/out.mp4", url)
}

func TestWaitForJobHonorsContext(t *testing.T) {
  lipsync := &stubLipsync{
    fetchFn: func(ctx context.Context, call int, jobID string) (LipsyncJobStatus, error) {
      return LipsyncJobStatus{Status: JobStateRunning}, nil
    },
  }

  ctx, cancel := context.WithCancel(context.Background())
  cancel()

  jp := newTestPoller(lipsync, 10)
  _, err := jp.WaitForJob(ctx, "job-1")
  assert.ErrorIs(t, err, context.Canceled)
}
