package playback

import (
  "testing"

  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

func TestSnapshotStartsIdle(t *testing.T) {
  c := NewController("https://cdn/idle.mp4", "https://cdn/poster.png")

  view := c.Snapshot()
  assert.Equal(t, ModeIdle, view.Mode)
  assert.Equal(t, "https://cdn/idle.mp4", view.URL)
  assert.Equal(t, "https://cdn/poster.png", view.PosterURL)
  assert.True(t, view.Loop)
  assert.True(t, view.Muted)
  assert.False(t, view.Controls)
}

func TestLoadPlaysClipsInOrder(t *testing.T) {
  c := NewController("https://cdn/idle.mp4", "")
  messageID := uuid.New()
  urls := []string{"https://cdn/c0.mp4", "https://cdn/c1.mp4", "https://cdn/c2.mp4"}

  c.Load(messageID, urls)

  view := c.Snapshot()
  require.Equal(t, ModeActive, view.Mode)
  assert.Equal(t, messageID, view.MessageID)
  assert.Equal(t, urls[0], view.URL)
  assert.Equal(t, 0, view.Index)
  assert.Equal(t, 2, view.Remaining)
  assert.False(t, view.Loop)
  assert.False(t, view.Muted)
  assert.True(t, view.Controls)

  require.True(t, c.ClipEnded())
  view = c.Snapshot()
  assert.Equal(t, urls[1], view.URL)
  assert.Equal(t, 1, view.Index)

  require.True(t, c.ClipEnded())
  assert.Equal(t, urls[2], c.Snapshot().URL)

  // After the last clip the pane falls back to idle.
  require.False(t, c.ClipEnded())
  view = c.Snapshot()
  assert.Equal(t, ModeIdle, view.Mode)
  assert.Equal(t, "https://cdn/idle.mp4", view.URL)
}

func TestLoadEmptyListStaysIdle(t *testing.T) {
  c := NewController("https://cdn/idle.mp4", "")
  c.Load(uuid.New(), nil)
  assert.Equal(t, ModeIdle, c.Snapshot().Mode)
  assert.False(t, c.ClipEnded())
}

func TestLoadPreemptsActivePlayback(t *testing.T) {
  c := NewController("", "")
  c.Load(uuid.New(), []string{"https://cdn/a0.mp4", "https://cdn/a1.mp4"})
  require.True(t, c.ClipEnded())

  second := uuid.New()
  c.Load(second, []string{"https://cdn/b0.mp4"})

  view := c.Snapshot()
  assert.Equal(t, second, view.MessageID)
  assert.Equal(t, "https://cdn/b0.mp4", view.URL)
  assert.Equal(t, 0, view.Index)
}

func TestReplayRestartsFromFirstClip(t *testing.T) {
  c := NewController("", "")
  messageID := uuid.New()
  urls := []string{"https://cdn/c0.mp4", "https://cdn/c1.mp4"}

  c.Load(messageID, urls)
  require.True(t, c.ClipEnded())
  require.False(t, c.ClipEnded())

  c.Replay(messageID, urls)
  view := c.Snapshot()
  assert.Equal(t, ModeActive, view.Mode)
  assert.Equal(t, urls[0], view.URL)
  assert.Equal(t, 0, view.Index)
}

func TestResetReturnsToIdle(t *testing.T) {
  c := NewController("https://cdn/idle.mp4", "")
  c.Load(uuid.New(), []string{"https://cdn/c0.mp4"})

  c.Reset()
  view := c.Snapshot()
  assert.Equal(t, ModeIdle, view.Mode)
  assert.False(t, c.ClipEnded())
}

func TestLoadCopiesURLSlice(t *testing.T) {
  c := NewController("", "")
  urls := []string{"https://cdn/c0.mp4", "https://cdn/c1.mp4"}
  c.Load(uuid.New(), urls)

  urls[0] = "https://cdn/mutated.mp4"
  assert.Equal(t, "https://cdn/c0.mp4", c.Snapshot().URL)
}
