// Package playback models the client-side video pane: sequential playback of
// a reply's ordered clips, with fallback to the avatar's idle loop whenever
// nothing is actively playing.
package playback

import (
  "sync"

  "github.com/google/uuid"
)

type Mode string

const (
  ModeIdle   Mode = "idle"
  ModeActive Mode = "active"
)

// View is what the video pane should render right now.
type View struct {
  Mode      Mode
  MessageID uuid.UUID
  URL       string
  PosterURL string
  Index     int
  Remaining int
  Loop      bool
  Muted     bool
  Controls  bool
}

// Controller drives one avatar's video pane. All methods are safe for
// concurrent use; UI events and reply arrivals race in practice.
type Controller struct {
  mu sync.Mutex

  idleURL   string
  posterURL string

  activeMessageID uuid.UUID
  orderedURLs     []string
  currentIndex    int
  active          bool
}

func NewController(idleURL, posterURL string) *Controller {
  return &Controller{
    idleURL:   idleURL,
    posterURL: posterURL,
  }
}

// Load enters active playback at index 0 for a reply's clip list, preempting
// whatever is currently playing. An empty list keeps (or returns to) idle.
func (c *Controller) Load(messageID uuid.UUID, urls []string) {
  c.mu.Lock()
  defer c.mu.Unlock()
  if len(urls) == 0 {
    c.reset()
    return
  }
  c.activeMessageID = messageID
  c.orderedURLs = append([]string(nil), urls...)
  c.currentIndex = 0
  c.active = true
}

// Replay re-enters active playback from the start of a historical message's
// stored clips. Same semantics as Load.
func (c *Controller) Replay(messageID uuid.UUID, urls []string) {
  c.Load(messageID, urls)
}

// ClipEnded advances to the next clip, or returns to idle after the last one.
// It reports whether another clip is now playing.
func (c *Controller) ClipEnded() bool {
  c.mu.Lock()
  defer c.mu.Unlock()
  if !c.active {
    return false
  }
  if c.currentIndex+1 < len(c.orderedURLs) {
    c.currentIndex++
    return true
  }
  c.reset()
  return false
}

// Reset clears any active playback; the pane shows the idle loop until the
// next reply arrives. Called when the user sends a new message.
func (c *Controller) Reset() {
  c.mu.Lock()
  defer c.mu.Unlock()
  c.reset()
}

func (c *Controller) reset() {
  c.activeMessageID = uuid.Nil
  c.orderedURLs = nil
  c.currentIndex = 0
  c.active = false
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() View {
  c.mu.Lock()
  defer c.mu.Unlock()

  if !c.active {
    return View{
      Mode:      ModeIdle,
      URL:       c.idleURL,
      PosterURL: c.posterURL,
      Loop:      true,
      Muted:     true,
      Controls:  false,
    }
  }
  return View{
    Mode:      ModeActive,
    MessageID: c.activeMessageID,
    URL:       c.orderedURLs[c.currentIndex],
    Index:     c.currentIndex,
    Remaining: len(c.orderedURLs) - c.currentIndex - 1,
    Loop:      false,
    Muted:     false,
    Controls:  true,
  }
}
