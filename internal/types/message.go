package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

type MessageRole string

const (
  MessageRoleUser      MessageRole = "user"
  MessageRoleAssistant MessageRole = "assistant"
)

type MessageStatus string

const (
  MessageStatusPending    MessageStatus = "pending"
  MessageStatusAudioReady MessageStatus = "audio_ready"
  MessageStatusRendering  MessageStatus = "rendering"
  MessageStatusDone       MessageStatus = "done"
  MessageStatusError      MessageStatus = "error"
)

// Message is the atomic unit of conversation. VideoURLs preserves generation
// order; VideoURL is always VideoURLs[0] when the list is non-empty and exists
// only as a denormalized convenience for older clients.
type Message struct {
  gorm.Model

  ID         uuid.UUID                      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID     uuid.UUID                      `gorm:"index;not null" json:"userId"`
  AvatarID   uuid.UUID                      `gorm:"index;not null" json:"avatarId"`
  Role       MessageRole                    `gorm:"not null;column:role" json:"role"`
  Text       string                         `gorm:"column:text" json:"text"`
  Status     MessageStatus                  `gorm:"not null;column:status" json:"status"`
  JobID      *string                        `gorm:"index;column:job_id" json:"jobId,omitempty"`
  VideoPath  string                         `gorm:"column:video_path" json:"videoPath,omitempty"`
  VideoURL   string                         `gorm:"column:video_url" json:"videoUrl,omitempty"`
  VideoURLs  datatypes.JSONSlice[string]    `gorm:"column:video_urls" json:"videoUrls"`
  DurationMs *int                           `gorm:"column:duration_ms" json:"durationMs,omitempty"`
  CreatedAt  time.Time                      `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt  time.Time                      `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Message) TableName() string {
  return "message"
}

// SetVideoURLs replaces the ordered clip list and keeps the denormalized
// VideoURL in sync.
func (m *Message) SetVideoURLs(urls []string) {
  m.VideoURLs = datatypes.NewJSONSlice(urls)
  if len(urls) > 0 {
    m.VideoURL = urls[0]
  } else {
    m.VideoURL = ""
  }
}

// Terminal reports whether the message can no longer change status.
func (m *Message) Terminal() bool {
  return m.Status == MessageStatusDone || m.Status == MessageStatusError
}
