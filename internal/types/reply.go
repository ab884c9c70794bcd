package types

import "github.com/google/uuid"

// ReplySettings are per-request pipeline toggles sent by the mobile client.
type ReplySettings struct {
  CleanMode        *bool `json:"cleanMode,omitempty"`
  SkipShortReplies bool  `json:"skipShortReplies,omitempty"`
}

// ReplyPayload is the inbound body for POST /api/reply.
type ReplyPayload struct {
  AvatarID       string          `json:"avatarId"`
  UserText       string          `json:"userText"`
  LipsyncQuality LipsyncQuality  `json:"lipsyncQuality,omitempty"`
  Settings       ReplySettings   `json:"settings"`
}

// ReplyResponse is the assembled reply returned to the client. AudioB64
// carries the whole-reply fallback audio so playback is possible even when no
// segment produced a video.
type ReplyResponse struct {
  ReplyText string    `json:"replyText"`
  AudioB64  string    `json:"audioB64"`
  Mime      string    `json:"mime"`
  MessageID uuid.UUID `json:"messageId"`
  VideoURLs []string  `json:"videoUrls"`
}

// JobStatusResponse is the body for GET /api/job/:id (legacy single-job mode).
type JobStatusResponse struct {
  Status    string     `json:"status"`
  Mp4URL    string     `json:"mp4Url,omitempty"`
  MessageID *uuid.UUID `json:"messageId,omitempty"`
  Error     string     `json:"error,omitempty"`
}

// AvatarPatch is the inbound body for PATCH /api/avatars/:avatarId. Nil fields
// are left untouched.
type AvatarPatch struct {
  Name            *string         `json:"name,omitempty"`
  Persona         *string         `json:"persona,omitempty"`
  VoicePreset     *string         `json:"voicePreset,omitempty"`
  VoiceSpeed      *float64        `json:"voiceSpeed,omitempty"`
  VoicePitch      *float64        `json:"voicePitch,omitempty"`
  LipsyncQuality  *LipsyncQuality `json:"lipsyncQuality,omitempty"`
  SafeMode        *bool           `json:"safeMode,omitempty"`
  IdleVideoURL    *string         `json:"idleVideoUrl,omitempty"`
  TalkingVideoURL *string         `json:"talkingVideoUrl,omitempty"`
}
