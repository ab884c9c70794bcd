package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type BaseKind string

const (
  BaseKindImage BaseKind = "image"
  BaseKindVideo BaseKind = "video"
)

type LipsyncQuality string

const (
  LipsyncQualityFast LipsyncQuality = "fast"
  LipsyncQualityHD   LipsyncQuality = "hd"
)

// Avatar is the persona being chatted with. The reply pipeline only reads
// avatar configuration; it never mutates avatar rows.
type Avatar struct {
  gorm.Model

  ID               uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID           uuid.UUID       `gorm:"index;not null" json:"userId"`
  Name             string          `gorm:"not null;column:name" json:"name"`
  BasePath         string          `gorm:"column:base_path" json:"basePath"`
  BaseKind         BaseKind        `gorm:"column:base_kind" json:"baseKind"`
  BaseMime         string          `gorm:"column:base_mime" json:"baseMime"`
  BaseURL          string          `gorm:"column:base_url" json:"baseUrl"`
  PosterPath       string          `gorm:"column:poster_path" json:"posterPath,omitempty"`
  PosterURL        string          `gorm:"column:poster_url" json:"posterUrl,omitempty"`
  IdleVideoPath    string          `gorm:"column:idle_video_path" json:"idleVideoPath,omitempty"`
  IdleVideoURL     string          `gorm:"column:idle_video_url" json:"idleVideoUrl,omitempty"`
  TalkingVideoPath string          `gorm:"column:talking_video_path" json:"talkingVideoPath,omitempty"`
  TalkingVideoURL  string          `gorm:"column:talking_video_url" json:"talkingVideoUrl,omitempty"`
  VoiceProvider    string          `gorm:"column:voice_provider" json:"voiceProvider"`
  VoicePreset      string          `gorm:"column:voice_preset" json:"voicePreset"`
  VoiceProviderID  string          `gorm:"column:voice_provider_id" json:"voiceProviderId"`
  VoiceSpeed       *float64        `gorm:"column:voice_speed" json:"voiceSpeed,omitempty"`
  VoicePitch       *float64        `gorm:"column:voice_pitch" json:"voicePitch,omitempty"`
  LipsyncQuality   LipsyncQuality  `gorm:"column:lipsync_quality;default:fast" json:"lipsyncQuality"`
  Persona          string          `gorm:"column:persona" json:"persona,omitempty"`
  SafeMode         *bool           `gorm:"column:safe_mode" json:"safeMode,omitempty"`
  CreatedAt        time.Time       `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt        time.Time       `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Avatar) TableName() string {
  return "avatar"
}

// TalkingURL resolves the visual that drives lip-sync rendering. Video-based
// avatars prefer their dedicated talking clip; image-based ones always use the
// base still.
func (a *Avatar) TalkingURL() string {
  if a.BaseKind == BaseKindVideo {
    if a.TalkingVideoURL != "" {
      return a.TalkingVideoURL
    }
  }
  return a.BaseURL
}

// IdleURL resolves the clip shown while no reply video is playing.
func (a *Avatar) IdleURL() string {
  if a.IdleVideoURL != "" {
    return a.IdleVideoURL
  }
  if a.BaseKind == BaseKindVideo {
    return a.BaseURL
  }
  return ""
}
