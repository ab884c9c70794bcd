package services

import (
  "bytes"
  "context"
  "encoding/base64"
  "errors"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/repos"
  "github.com/basespeak/basespeak-backend/internal/socket"
  "github.com/basespeak/basespeak-backend/internal/types"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

var (
  ErrAvatarNotFound = errors.New("avatar not found")
  ErrMissingField   = errors.New("missing required field")
)

// ReplyService runs the whole reply pipeline for one user turn: normalize,
// generate, synthesize, segment, render, persist, assemble.
type ReplyService interface {
  HandleReply(ctx context.Context, userID uuid.UUID, payload types.ReplyPayload) (types.ReplyResponse, error)
}

type replyService struct {
  db               *gorm.DB
  log              *logger.Logger
  avatarRepo       repos.AvatarRepo
  messageRepo      repos.MessageRepo
  llm              LLMService
  speech           SpeechService
  lipsync          LipsyncService
  poller           JobPoller
  bucket           BucketService
  hub              *socket.Hub
  cleanModeDefault bool
}

func NewReplyService(
  db *gorm.DB,
  log *logger.Logger,
  avatarRepo repos.AvatarRepo,
  messageRepo repos.MessageRepo,
  llm LLMService,
  speech SpeechService,
  lipsync LipsyncService,
  poller JobPoller,
  bucket BucketService,
  hub *socket.Hub,
) ReplyService {
  serviceLog := log.With("service", "ReplyService")
  cleanModeDefault := utils.GetEnvAsBool("CLEAN_MODE_DEFAULT", true, serviceLog)
  return &replyService{
    db:               db,
    log:              serviceLog,
    avatarRepo:       avatarRepo,
    messageRepo:      messageRepo,
    llm:              llm,
    speech:           speech,
    lipsync:          lipsync,
    poller:           poller,
    bucket:           bucket,
    hub:              hub,
    cleanModeDefault: cleanModeDefault,
  }
}

func (rs *replyService) HandleReply(ctx context.Context, userID uuid.UUID, payload types.ReplyPayload) (types.ReplyResponse, error) {
  //1) Validate inputs and resolve the avatar
  if payload.AvatarID == "" {
    return types.ReplyResponse{}, fmt.Errorf("%w: avatarId", ErrMissingField)
  }
  userText := TruncateText(NormalizeText(payload.UserText), MaxAssistantChars)
  if userText == "" {
    return types.ReplyResponse{}, fmt.Errorf("%w: userText", ErrMissingField)
  }
  avatarID, err := uuid.Parse(payload.AvatarID)
  if err != nil {
    return types.ReplyResponse{}, fmt.Errorf("%w: avatarId", ErrMissingField)
  }
  avatar, err := rs.avatarRepo.GetByID(ctx, nil, userID, avatarID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return types.ReplyResponse{}, ErrAvatarNotFound
    }
    return types.ReplyResponse{}, err
  }
  rs.log.Info("handling reply", "avatarID", avatar.ID, "userID", userID)

  //2) Persist the user turn immediately; it stays valid no matter what the
  //   rest of the pipeline does.
  userMessage := &types.Message{
    ID:       uuid.New(),
    UserID:   userID,
    AvatarID: avatar.ID,
    Role:     types.MessageRoleUser,
    Text:     userText,
    Status:   types.MessageStatusDone,
  }
  if _, err := rs.messageRepo.Create(ctx, nil, userMessage); err != nil {
    return types.ReplyResponse{}, fmt.Errorf("failed to persist user message: %w", err)
  }

  //3) Resolve the effective clean-mode flag: request override, then avatar
  //   default, then system default.
  cleanMode := rs.cleanModeDefault
  if avatar.SafeMode != nil {
    cleanMode = *avatar.SafeMode
  }
  if payload.Settings.CleanMode != nil {
    cleanMode = *payload.Settings.CleanMode
  }

  //4) Generate and bound the reply text
  replyText := TruncateText(rs.llm.GenerateReply(ctx, userText, avatar.Persona, cleanMode), MaxAssistantChars)
  rs.log.Debug("generated reply", "replyText", replyText)

  //5) Whole-reply fallback audio, always produced so audio-only playback works
  fallbackSpeech := rs.speech.Synthesize(ctx, replyText, avatar.VoicePreset, avatar.VoiceSpeed, avatar.VoicePitch)

  quality := payload.LipsyncQuality
  if quality == "" {
    quality = avatar.LipsyncQuality
  }
  if quality == "" {
    quality = types.LipsyncQualityFast
  }

  assistantMessageID := uuid.New()
  videoURLs := rs.renderSegments(ctx, userID, avatar, assistantMessageID, replyText, quality, payload.Settings)

  //10) Partial segment failure never produces an error status; no clips just
  //    means audio-only.
  status := types.MessageStatusAudioReady
  if len(videoURLs) > 0 {
    status = types.MessageStatusDone
  }

  //11) Persist the assistant turn and assemble the response
  durationMs := fallbackSpeech.DurationMs
  assistantMessage := &types.Message{
    ID:         assistantMessageID,
    UserID:     userID,
    AvatarID:   avatar.ID,
    Role:       types.MessageRoleAssistant,
    Text:       replyText,
    Status:     status,
    DurationMs: &durationMs,
  }
  assistantMessage.SetVideoURLs(videoURLs)
  if _, err := rs.messageRepo.Create(ctx, nil, assistantMessage); err != nil {
    return types.ReplyResponse{}, fmt.Errorf("failed to persist assistant message: %w", err)
  }
  rs.broadcast(ctx, assistantMessage)

  return types.ReplyResponse{
    ReplyText: replyText,
    AudioB64:  base64.StdEncoding.EncodeToString(fallbackSpeech.Audio),
    Mime:      fallbackSpeech.Mime,
    MessageID: assistantMessage.ID,
    VideoURLs: videoURLs,
  }, nil
}

// renderSegments runs steps 6-9 of the pipeline: the skip heuristics, the
// driving-visual resolution, segmentation, and the strictly ordered
// per-segment render loop. It returns the ordered clip URLs; an empty slice
// means audio-only.
func (rs *replyService) renderSegments(
  ctx context.Context,
  userID uuid.UUID,
  avatar *types.Avatar,
  messageID uuid.UUID,
  replyText string,
  quality types.LipsyncQuality,
  settings types.ReplySettings,
) []string {
  //6) Skip-lipsync heuristic for short replies
  if settings.SkipShortReplies && len([]rune(replyText)) < SkipShortReplyChars {
    rs.log.Debug("skipping lipsync for short reply", "chars", len([]rune(replyText)))
    return nil
  }

  // Segment audio has to land somewhere the vendor can fetch it, so without
  // object storage the reply stays audio-only.
  if rs.bucket == nil {
    rs.log.Warn("no bucket configured, skipping lipsync", "avatarID", avatar.ID)
    return nil
  }

  //7) Without a driving visual there is nothing to animate
  talkingURL := avatar.TalkingURL()
  if talkingURL == "" {
    rs.log.Debug("no driving visual resolvable, skipping lipsync", "avatarID", avatar.ID)
    return nil
  }

  //8) Empty segmentation also means no lip-sync possible
  segments := SegmentText(replyText, WordsPerSegment)
  if len(segments) == 0 {
    return nil
  }
  rs.log.Info("generating segments", "count", len(segments))

  //9) Render each segment in order; failures are isolated and skipped
  videoURLs := make([]string, 0, len(segments))
  for index, segmentText := range segments {
    clipURL, err := rs.renderSegment(ctx, userID, avatar, messageID, index, segmentText, talkingURL, quality)
    if err != nil {
      rs.log.Warn("failed to process lipsync segment", "segment", index, "error", err)
      continue
    }
    if clipURL == "" {
      rs.log.Warn("lipsync clip missing URL", "segment", index)
      continue
    }
    rs.log.Debug("lipsync clip ready", "segment", index, "clipURL", clipURL)
    videoURLs = append(videoURLs, clipURL)
  }
  return videoURLs
}

func (rs *replyService) renderSegment(
  ctx context.Context,
  userID uuid.UUID,
  avatar *types.Avatar,
  messageID uuid.UUID,
  index int,
  segmentText string,
  talkingURL string,
  quality types.LipsyncQuality,
) (string, error) {
  segmentSpeech := rs.speech.Synthesize(ctx, segmentText, avatar.VoicePreset, avatar.VoiceSpeed, avatar.VoicePitch)

  // The lip-sync vendor needs a durable URL, so the segment audio is uploaded
  // before submission.
  extension := "mp3"
  if segmentSpeech.Mime == "audio/wav" || segmentSpeech.Mime == "audio/x-wav" {
    extension = "wav"
  }
  audioKey := fmt.Sprintf("%s/audio/%s-%d.%s", userID, messageID, index, extension)
  audioURL, err := rs.bucket.UploadFile(ctx, audioKey, bytes.NewReader(segmentSpeech.Audio), segmentSpeech.Mime)
  if err != nil {
    return "", fmt.Errorf("segment audio upload failed: %w", err)
  }
  if audioURL == "" {
    return "", fmt.Errorf("segment audio upload missing URL: %s", audioKey)
  }

  rs.log.Debug("lipsync submission", "talkingURL", talkingURL, "audioURL", audioURL, "segment", index)
  submission, err := rs.lipsync.Submit(ctx, LipsyncSubmitOptions{
    BaseURL:  talkingURL,
    BaseKind: avatar.BaseKind,
    AudioURL: audioURL,
    Quality:  quality,
  })
  if err != nil {
    return "", fmt.Errorf("lipsync submission failed: %w", err)
  }

  if submission.Mp4URL != "" {
    return submission.Mp4URL, nil
  }
  if submission.JobID == "" {
    return "", nil
  }
  clipURL, err := rs.poller.WaitForJob(ctx, submission.JobID)
  if err != nil {
    return "", err
  }
  return clipURL, nil
}

func (rs *replyService) broadcast(ctx context.Context, msg *types.Message) {
  if rs.hub == nil {
    return
  }
  rs.hub.BroadcastGlobal(ctx, socket.Message{
    Channel: "avatar:" + msg.AvatarID.String(),
    Payload: msg,
  })
}
