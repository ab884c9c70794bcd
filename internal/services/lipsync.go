package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "time"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/types"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

// JobState is the closed status vocabulary every vendor status string is
// normalized into at the client boundary.
type JobState string

const (
  JobStateQueued  JobState = "queued"
  JobStateRunning JobState = "running"
  JobStateDone    JobState = "done"
  JobStateError   JobState = "error"
)

func (s JobState) Terminal() bool {
  return s == JobStateDone || s == JobStateError
}

// vendorStatusMap translates the vendor's status vocabulary. Anything
// unrecognized maps to queued; success is never assumed.
var vendorStatusMap = map[string]JobState{
  "queued":     JobStateQueued,
  "pending":    JobStateQueued,
  "processing": JobStateRunning,
  "running":    JobStateRunning,
  "working":    JobStateRunning,
  "done":       JobStateDone,
  "completed":  JobStateDone,
  "success":    JobStateDone,
  "error":      JobStateError,
  "failed":     JobStateError,
}

// NormalizeJobState maps a raw vendor status string onto the closed state set.
func NormalizeJobState(raw string) JobState {
  if state, ok := vendorStatusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
    return state
  }
  return JobStateQueued
}

type LipsyncSubmitOptions struct {
  BaseURL  string
  BaseKind types.BaseKind
  AudioURL string
  Quality  types.LipsyncQuality
}

// LipsyncSubmitResult carries either an immediate clip URL or a job handle to
// poll, never vendor field names.
type LipsyncSubmitResult struct {
  JobID  string
  Mp4URL string
}

type LipsyncJobStatus struct {
  Status JobState
  Mp4URL string
  Error  string
}

// LipsyncService submits lip-sync render jobs and fetches their status. A
// FetchJob error means the vendor could not be reached or understood; vendor
// verdicts (including job failure) arrive in the returned status.
type LipsyncService interface {
  Submit(ctx context.Context, opts LipsyncSubmitOptions) (LipsyncSubmitResult, error)
  FetchJob(ctx context.Context, jobID string) (LipsyncJobStatus, error)
  Configured() bool
}

type lipsyncService struct {
  log     *logger.Logger
  client  *http.Client
  baseURL string
  apiKey  string
}

func NewLipsyncService(log *logger.Logger) (LipsyncService, error) {
  serviceLog := log.With("service", "LipsyncService")
  baseURL := utils.GetEnv("GOOEY_API_URL", "https://api.gooey.ai/v1", serviceLog)
  apiKey := utils.GetEnv("GOOEY_KEY", "", serviceLog)
  if apiKey == "" {
    serviceLog.Warn("GOOEY_KEY not set; lip-sync rendering is disabled")
  }
  httpClient := &http.Client{
    Timeout: 30 * time.Second,
  }
  return &lipsyncService{
    log:     serviceLog,
    client:  httpClient,
    baseURL: strings.TrimRight(baseURL, "/"),
    apiKey:  apiKey,
  }, nil
}

func (lp *lipsyncService) Configured() bool {
  return lp.apiKey != ""
}

type lipsyncSubmitResponse struct {
  JobID      string `json:"job_id"`
  ID         string `json:"id"`
  Mp4URLSnake string `json:"mp4_url"`
  Mp4URLCamel string `json:"mp4Url"`
}

func (lp *lipsyncService) Submit(ctx context.Context, opts LipsyncSubmitOptions) (LipsyncSubmitResult, error) {
  if lp.apiKey == "" {
    return LipsyncSubmitResult{}, nil
  }

  payload := map[string]interface{}{
    "audio_url": opts.AudioURL,
    "quality":   string(opts.Quality),
  }
  if opts.BaseKind == types.BaseKindImage {
    payload["face_image_url"] = opts.BaseURL
  } else {
    payload["input_video_url"] = opts.BaseURL
  }
  body, err := json.Marshal(payload)
  if err != nil {
    return LipsyncSubmitResult{}, err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, lp.baseURL+"/lipsync", bytes.NewReader(body))
  if err != nil {
    return LipsyncSubmitResult{}, err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Authorization", "Bearer "+lp.apiKey)

  resp, err := lp.client.Do(req)
  if err != nil {
    lp.log.Warn("lipsync submission failed", "error", err)
    return LipsyncSubmitResult{}, err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    lp.log.Warn("lipsync vendor responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return LipsyncSubmitResult{}, fmt.Errorf("lipsync vendor HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }

  var out lipsyncSubmitResponse
  if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
    return LipsyncSubmitResult{}, err
  }

  result := LipsyncSubmitResult{
    JobID:  out.JobID,
    Mp4URL: out.Mp4URLSnake,
  }
  if result.JobID == "" {
    result.JobID = out.ID
  }
  if result.Mp4URL == "" {
    result.Mp4URL = out.Mp4URLCamel
  }
  return result, nil
}

type lipsyncStatusResponse struct {
  Status    string `json:"status"`
  State     string `json:"state"`
  Mp4URL    string `json:"mp4_url"`
  ResultURL string `json:"result_url"`
  Error     string `json:"error"`
  Message   string `json:"message"`
}

func (lp *lipsyncService) FetchJob(ctx context.Context, jobID string) (LipsyncJobStatus, error) {
  if lp.apiKey == "" {
    return LipsyncJobStatus{Status: JobStateError, Error: "GOOEY_KEY missing"}, nil
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodGet, lp.baseURL+"/jobs/"+jobID, nil)
  if err != nil {
    return LipsyncJobStatus{}, err
  }
  req.Header.Set("Authorization", "Bearer "+lp.apiKey)

  resp, err := lp.client.Do(req)
  if err != nil {
    lp.log.Warn("lipsync job poll failed", "jobID", jobID, "error", err)
    return LipsyncJobStatus{}, fmt.Errorf("failed to reach lipsync vendor: %w", err)
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    lp.log.Warn("lipsync job poll non-2xx", "jobID", jobID, "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return LipsyncJobStatus{}, fmt.Errorf("lipsync vendor HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }

  var out lipsyncStatusResponse
  if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
    return LipsyncJobStatus{}, err
  }

  raw := out.Status
  if raw == "" {
    raw = out.State
  }
  mp4URL := out.Mp4URL
  if mp4URL == "" {
    mp4URL = out.ResultURL
  }
  errMsg := out.Error
  if errMsg == "" {
    errMsg = out.Message
  }
  return LipsyncJobStatus{
    Status: NormalizeJobState(raw),
    Mp4URL: mp4URL,
    Error:  errMsg,
  }, nil
}
