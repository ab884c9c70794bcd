package services

import (
  "context"
  "testing"

  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/types"
)

func newTestAvatarService(t *testing.T) (AvatarService, *fakeAvatarRepo, *fakeMessageRepo, *stubBucket) {
  t.Helper()
  avatarRepo := newFakeAvatarRepo()
  messageRepo := newFakeMessageRepo()
  bucket := &stubBucket{}
  svc, err := NewAvatarService(nil, logger.NewNop(), avatarRepo, messageRepo, bucket, nil)
  require.NoError(t, err)
  return svc, avatarRepo, messageRepo, bucket
}

func TestCreateFromBaseImage(t *testing.T) {
  svc, _, _, bucket := newTestAvatarService(t)
  userID := uuid.New()

  avatar, err := svc.CreateFromBase(context.Background(), userID, CreateAvatarOptions{
    Name:        "Marina",
    VoicePreset: "Calm_Woman",
    Persona:     "a retired sea captain",
    Mime:        "image/png",
    Data:        []byte("png-bytes"),
  })
  require.NoError(t, err)

  assert.Equal(t, types.BaseKindImage, avatar.BaseKind)
  assert.Equal(t, types.LipsyncQualityFast, avatar.LipsyncQuality)
  assert.Equal(t, types.DefaultVoiceProvider, avatar.VoiceProvider)
  assert.NotEmpty(t, avatar.VoiceProviderID)
  assert.Contains(t, avatar.BasePath, userID.String())
  assert.Contains(t, avatar.BasePath, ".png")
  assert.Equal(t, "https://cdn.test/"+avatar.BasePath, avatar.BaseURL)
  require.Len(t, bucket.uploads, 1)
}

func TestCreateFromBaseVideo(t *testing.T) {
  svc, _, _, _ := newTestAvatarService(t)

  avatar, err := svc.CreateFromBase(context.Background(), uuid.New(), CreateAvatarOptions{
    Name: "Clipper",
    Mime: "video/mp4",
    Data: []byte("mp4-bytes"),
  })
  require.NoError(t, err)
  assert.Equal(t, types.BaseKindVideo, avatar.BaseKind)
  assert.Contains(t, avatar.BasePath, ".mp4")
}

func TestCreateFromBaseRejectsUnsupportedMime(t *testing.T) {
  svc, _, _, _ := newTestAvatarService(t)

  _, err := svc.CreateFromBase(context.Background(), uuid.New(), CreateAvatarOptions{
    Name: "Nope",
    Mime: "application/pdf",
    Data: []byte("pdf-bytes"),
  })
  assert.ErrorIs(t, err, ErrUnsupportedMedia)

  _, err = svc.CreateFromBase(context.Background(), uuid.New(), CreateAvatarOptions{
    Name: "Empty",
    Mime: "image/png",
  })
  assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestUpdateAvatarPatchesOnlyProvidedFields(t *testing.T) {
  svc, avatarRepo, _, _ := newTestAvatarService(t)
  userID := uuid.New()
  avatar := &types.Avatar{
    ID:          uuid.New(),
    UserID:      userID,
    Name:        "Before",
    Persona:     "old persona",
    VoicePreset: "Calm_Woman",
  }
  avatarRepo.Create(context.Background(), nil, avatar)

  newName := "After"
  safeMode := false
  updated, err := svc.UpdateAvatar(context.Background(), userID, avatar.ID, types.AvatarPatch{
    Name:     &newName,
    SafeMode: &safeMode,
  })
  require.NoError(t, err)

  assert.Equal(t, "After", updated.Name)
  require.NotNil(t, updated.SafeMode)
  assert.False(t, *updated.SafeMode)
  // Untouched fields keep their values.
  assert.Equal(t, "old persona", updated.Persona)
  assert.Equal(t, "Calm_Woman", updated.VoicePreset)
}

func TestUpdateAvatarReResolvesVoice(t *testing.T) {
  svc, avatarRepo, _, _ := newTestAvatarService(t)
  userID := uuid.New()
  avatar := &types.Avatar{ID: uuid.New(), UserID: userID, VoicePreset: "Calm_Woman"}
  avatarRepo.Create(context.Background(), nil, avatar)

  preset := "Deep_Voice_Man"
  updated, err := svc.UpdateAvatar(context.Background(), userID, avatar.ID, types.AvatarPatch{VoicePreset: &preset})
  require.NoError(t, err)
  assert.Equal(t, "Deep_Voice_Man", updated.VoicePreset)
  assert.Equal(t, types.ResolveVoiceProviderID("Deep_Voice_Man"), updated.VoiceProviderID)
}

func TestUpdateAvatarUnknown(t *testing.T) {
  svc, _, _, _ := newTestAvatarService(t)
  _, err := svc.UpdateAvatar(context.Background(), uuid.New(), uuid.New(), types.AvatarPatch{})
  assert.ErrorIs(t, err, ErrAvatarNotFound)
}

func TestListMessagesRequiresOwnedAvatar(t *testing.T) {
  svc, avatarRepo, messageRepo, _ := newTestAvatarService(t)
  userID := uuid.New()
  avatar := &types.Avatar{ID: uuid.New(), UserID: userID}
  avatarRepo.Create(context.Background(), nil, avatar)

  messageRepo.Create(context.Background(), nil, &types.Message{
    ID:       uuid.New(),
    UserID:   userID,
    AvatarID: avatar.ID,
    Role:     types.MessageRoleUser,
    Text:     "hi",
    Status:   types.MessageStatusDone,
  })

  msgs, err := svc.ListMessages(context.Background(), userID, avatar.ID)
  require.NoError(t, err)
  assert.Len(t, msgs, 1)

  _, err = svc.ListMessages(context.Background(), uuid.New(), avatar.ID)
  assert.ErrorIs(t, err, ErrAvatarNotFound)
}
