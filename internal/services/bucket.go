package services

import (
  "context"
  "fmt"
  "io"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

// BucketService is the asset-storage collaborator: uploads yield a durable
// public URL used by the lip-sync vendor and the mobile client.
type BucketService interface {
  UploadFile(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
  GetPublicURL(key string) string
}

type bucketService struct {
  log        *logger.Logger
  client     *storage.Client
  bucketName string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")

  bucketName := utils.GetEnv("GCS_BUCKET_NAME", "", serviceLog)
  if bucketName == "" {
    return nil, fmt.Errorf("env var GCS_BUCKET_NAME is empty")
  }
  credsFile := utils.GetEnv("GCS_CREDENTIALS_FILE", "", serviceLog)

  ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
  defer cancel()

  var client *storage.Client
  var err error
  if credsFile != "" {
    client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsFile))
  } else {
    client, err = storage.NewClient(ctx)
  }
  if err != nil {
    return nil, fmt.Errorf("failed to create GCS client: %w", err)
  }

  return &bucketService{
    log:        serviceLog,
    client:     client,
    bucketName: bucketName,
  }, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
  w := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  w.ContentType = contentType
  w.CacheControl = "public, max-age=3600"

  if _, err := io.Copy(w, r); err != nil {
    _ = w.Close()
    bs.log.Error("failed to write object to bucket", "key", key, "error", err)
    return "", fmt.Errorf("failed to write object %s: %w", key, err)
  }
  if err := w.Close(); err != nil {
    bs.log.Error("failed to finalize bucket upload", "key", key, "error", err)
    return "", fmt.Errorf("failed to finalize upload of %s: %w", key, err)
  }
  return bs.GetPublicURL(key), nil
}

func (bs *bucketService) GetPublicURL(key string) string {
  if key == "" {
    return ""
  }
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
