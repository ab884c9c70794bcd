package services

import (
  "bytes"
  "context"
  "errors"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/basespeak/basespeak-backend/internal/errordata"
  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/repos"
  "github.com/basespeak/basespeak-backend/internal/types"
)

var ErrUnsupportedMedia = errors.New("unsupported base media type")

// CreateAvatarOptions is the multipart payload of POST /api/upload-base.
type CreateAvatarOptions struct {
  Name           string
  VoicePreset    string
  Persona        string
  LipsyncQuality types.LipsyncQuality
  Mime           string
  Data           []byte
}

type AvatarService interface {
  ListAvatars(ctx context.Context, userID uuid.UUID) ([]types.Avatar, error)
  ListMessages(ctx context.Context, userID, avatarID uuid.UUID) ([]types.Message, error)
  CreateFromBase(ctx context.Context, userID uuid.UUID, opts CreateAvatarOptions) (*types.Avatar, error)
  UpdateAvatar(ctx context.Context, userID, avatarID uuid.UUID, patch types.AvatarPatch) (*types.Avatar, error)
}

type avatarService struct {
  db          *gorm.DB
  log         *logger.Logger
  avatarRepo  repos.AvatarRepo
  messageRepo repos.MessageRepo
  bucket      BucketService
  poster      PosterService
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, avatarRepo repos.AvatarRepo, messageRepo repos.MessageRepo, bucket BucketService, poster PosterService) (AvatarService, error) {
  return &avatarService{
    db:          db,
    log:         log.With("service", "AvatarService"),
    avatarRepo:  avatarRepo,
    messageRepo: messageRepo,
    bucket:      bucket,
    poster:      poster,
  }, nil
}

func (as *avatarService) ListAvatars(ctx context.Context, userID uuid.UUID) ([]types.Avatar, error) {
  return as.avatarRepo.GetByUserID(ctx, nil, userID)
}

func (as *avatarService) ListMessages(ctx context.Context, userID, avatarID uuid.UUID) ([]types.Message, error) {
  if _, err := as.avatarRepo.GetByID(ctx, nil, userID, avatarID); err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, ErrAvatarNotFound
    }
    return nil, err
  }
  return as.messageRepo.GetByAvatarID(ctx, nil, userID, avatarID)
}

func (as *avatarService) CreateFromBase(ctx context.Context, userID uuid.UUID, opts CreateAvatarOptions) (*types.Avatar, error) {
  baseKind := inferBaseKind(opts.Mime)
  if baseKind == "" {
    return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, opts.Mime)
  }
  if len(opts.Data) == 0 {
    return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedMedia)
  }

  quality := opts.LipsyncQuality
  if quality == "" {
    quality = types.LipsyncQualityFast
  }

  avatar := &types.Avatar{
    ID:              uuid.New(),
    UserID:          userID,
    Name:            opts.Name,
    BaseKind:        baseKind,
    BaseMime:        opts.Mime,
    VoiceProvider:   types.DefaultVoiceProvider,
    VoicePreset:     opts.VoicePreset,
    VoiceProviderID: types.ResolveVoiceProviderID(opts.VoicePreset),
    LipsyncQuality:  quality,
    Persona:         opts.Persona,
  }

  if as.bucket == nil {
    if errData := errordata.GetErrorData(ctx); errData != nil {
      errData.SetMessage("Media storage is not available right now, please try again later")
    }
    return nil, fmt.Errorf("no bucket configured, cannot store base media")
  }

  basePath := fmt.Sprintf("%s/bases/%s.%s", userID, avatar.ID, extensionFromMime(opts.Mime))
  baseURL, err := as.bucket.UploadFile(ctx, basePath, bytes.NewReader(opts.Data), opts.Mime)
  if err != nil {
    if errData := errordata.GetErrorData(ctx); errData != nil {
      errData.SetMessage("Could not store the uploaded media, please try again")
    }
    return nil, fmt.Errorf("failed to upload base media: %w", err)
  }
  avatar.BasePath = basePath
  avatar.BaseURL = baseURL

  if as.poster != nil {
    if err := as.poster.CreateAndUploadPoster(ctx, avatar, opts.Data); err != nil {
      as.log.Warn("failed to generate avatar poster", "avatarID", avatar.ID, "error", err)
    }
  }

  created, err := as.avatarRepo.Create(ctx, nil, avatar)
  if err != nil {
    return nil, err
  }
  as.log.Info("created avatar from base upload", "avatarID", created.ID, "baseKind", created.BaseKind)
  return created, nil
}

func (as *avatarService) UpdateAvatar(ctx context.Context, userID, avatarID uuid.UUID, patch types.AvatarPatch) (*types.Avatar, error) {
  avatar, err := as.avatarRepo.GetByID(ctx, nil, userID, avatarID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, ErrAvatarNotFound
    }
    return nil, err
  }

  if patch.Name != nil {
    avatar.Name = *patch.Name
  }
  if patch.Persona != nil {
    avatar.Persona = *patch.Persona
  }
  if patch.VoicePreset != nil {
    avatar.VoicePreset = *patch.VoicePreset
    avatar.VoiceProviderID = types.ResolveVoiceProviderID(*patch.VoicePreset)
  }
  if patch.VoiceSpeed != nil {
    avatar.VoiceSpeed = patch.VoiceSpeed
  }
  if patch.VoicePitch != nil {
    avatar.VoicePitch = patch.VoicePitch
  }
  if patch.LipsyncQuality != nil {
    avatar.LipsyncQuality = *patch.LipsyncQuality
  }
  if patch.SafeMode != nil {
    avatar.SafeMode = patch.SafeMode
  }
  if patch.IdleVideoURL != nil {
    avatar.IdleVideoURL = *patch.IdleVideoURL
  }
  if patch.TalkingVideoURL != nil {
    avatar.TalkingVideoURL = *patch.TalkingVideoURL
  }

  return as.avatarRepo.Update(ctx, nil, avatar)
}

//----------------------------------------------------------------------------------------
// Helpers
//----------------------------------------------------------------------------------------
func inferBaseKind(mime string) types.BaseKind {
  if strings.HasPrefix(mime, "video/") {
    return types.BaseKindVideo
  }
  if strings.HasPrefix(mime, "image/") {
    return types.BaseKindImage
  }
  return ""
}

func extensionFromMime(mime string) string {
  switch mime {
  case "image/png":
    return "png"
  case "image/jpeg", "image/jpg":
    return "jpg"
  case "image/webp":
    return "webp"
  case "video/mp4":
    return "mp4"
  case "video/quicktime":
    return "mov"
  }
  return "bin"
}
