package services

import (
  "bytes"
  "context"
  "encoding/binary"
  "encoding/hex"
  "encoding/json"
  "fmt"
  "io"
  "math"
  "net/http"
  "strings"
  "time"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

// SpeechResult is the normalized output of speech synthesis, regardless of
// which path (vendor or local fallback) produced it.
type SpeechResult struct {
  Audio      []byte
  Mime       string
  DurationMs int
}

// SpeechService turns text into audio. Like LLMService it absorbs provider
// failure: the worst case is a placeholder tone, never an error.
type SpeechService interface {
  Synthesize(ctx context.Context, text, voicePreset string, speed, pitch *float64) SpeechResult
}

type speechService struct {
  log          *logger.Logger
  client       *http.Client
  speechURL    string
  apiKey       string
  defaultVoice string
}

const (
  defaultVoiceSpeed  = 1.0
  defaultVoiceVolume = 1.0
  defaultVoicePitch  = 0.0
  speechWordsPerMin  = 150
  minSpeechMs        = 1000
)

func NewSpeechService(log *logger.Logger) (SpeechService, error) {
  serviceLog := log.With("service", "SpeechService")
  speechURL := utils.GetEnv("NOVITA_SPEECH_URL", "https://api.novita.ai/v3/minimax-speech-2.5-turbo-preview", serviceLog)
  defaultVoice := utils.GetEnv("NOVITA_SPEECH_DEFAULT_VOICE", "Wise_Woman", serviceLog)
  apiKey := utils.GetEnv("NOVITA_KEY", "", serviceLog)
  if apiKey == "" {
    serviceLog.Warn("NOVITA_KEY not set; speech will use the placeholder tone fallback")
  }
  httpClient := &http.Client{
    Timeout: 60 * time.Second,
  }
  return &speechService{
    log:          serviceLog,
    client:       httpClient,
    speechURL:    speechURL,
    apiKey:       apiKey,
    defaultVoice: defaultVoice,
  }, nil
}

type speechRequest struct {
  Text         string              `json:"text"`
  VoiceSetting speechVoiceSetting  `json:"voice_setting"`
  AudioSetting speechAudioSetting  `json:"audio_setting"`
  OutputFormat string              `json:"output_format"`
  Stream       bool                `json:"stream"`
}

type speechVoiceSetting struct {
  VoiceID string  `json:"voice_id"`
  Speed   float64 `json:"speed"`
  Vol     float64 `json:"vol"`
  Pitch   float64 `json:"pitch"`
  Emotion string  `json:"emotion"`
}

type speechAudioSetting struct {
  Format     string `json:"format"`
  SampleRate int    `json:"sample_rate"`
  Bitrate    int    `json:"bitrate"`
  Channel    int    `json:"channel"`
}

type speechResponse struct {
  Audio string `json:"audio"`
  Data  struct {
    Audio      string `json:"audio"`
    DurationMs int    `json:"duration_ms"`
  } `json:"data"`
}

func (ss *speechService) Synthesize(ctx context.Context, text, voicePreset string, speed, pitch *float64) SpeechResult {
  if ss.apiKey == "" {
    return fallbackSpeech(text)
  }
  result, err := ss.callSpeech(ctx, text, voicePreset, speed, pitch)
  if err != nil {
    ss.log.Warn("speech synthesis failed, using placeholder tone", "error", err)
    return fallbackSpeech(text)
  }
  return result
}

func (ss *speechService) callSpeech(ctx context.Context, text, voicePreset string, speed, pitch *float64) (SpeechResult, error) {
  voiceID := voicePreset
  if voiceID == "" {
    voiceID = ss.defaultVoice
  }
  body := speechRequest{
    Text: text,
    VoiceSetting: speechVoiceSetting{
      VoiceID: voiceID,
      Speed:   floatOrDefault(speed, defaultVoiceSpeed),
      Vol:     defaultVoiceVolume,
      Pitch:   floatOrDefault(pitch, defaultVoicePitch),
      Emotion: "neutral",
    },
    AudioSetting: speechAudioSetting{
      Format:     "mp3",
      SampleRate: 32000,
      Bitrate:    128000,
      Channel:    1,
    },
    OutputFormat: "hex",
    Stream:       false,
  }
  payload, err := json.Marshal(body)
  if err != nil {
    return SpeechResult{}, err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, ss.speechURL, bytes.NewReader(payload))
  if err != nil {
    return SpeechResult{}, err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Authorization", "Bearer "+ss.apiKey)

  resp, err := ss.client.Do(req)
  if err != nil {
    return SpeechResult{}, err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    return SpeechResult{}, fmt.Errorf("speech provider HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }
  var out speechResponse
  if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
    return SpeechResult{}, err
  }

  audioHex := out.Audio
  if audioHex == "" {
    audioHex = out.Data.Audio
  }
  if audioHex == "" {
    return SpeechResult{}, fmt.Errorf("speech provider returned no audio")
  }
  audio, err := hex.DecodeString(audioHex)
  if err != nil {
    return SpeechResult{}, fmt.Errorf("failed to decode hex audio: %w", err)
  }
  return SpeechResult{
    Audio:      audio,
    Mime:       "audio/mpeg",
    DurationMs: estimateDuration(text, out.Data.DurationMs),
  }, nil
}

func floatOrDefault(v *float64, def float64) float64 {
  if v == nil {
    return def
  }
  return *v
}

// estimateDuration prefers the vendor-reported duration, then falls back to a
// word-count heuristic at roughly 150 words per minute, floored at one second.
func estimateDuration(text string, vendorMs int) int {
  if vendorMs > 0 {
    return vendorMs
  }
  words := len(strings.Fields(text))
  if words == 0 {
    words = 1
  }
  ms := int(math.Round(float64(words) / speechWordsPerMin * 60 * 1000))
  if ms < minSpeechMs {
    ms = minSpeechMs
  }
  return ms
}

const (
  toneSampleRate = 16000
  toneFrequency  = 440
)

// fallbackSpeech builds a PCM16 mono WAV sine tone whose length scales with
// the text, clamped to 1..8 seconds.
func fallbackSpeech(text string) SpeechResult {
  durationSec := (len(text) + 39) / 40
  if durationSec < 1 {
    durationSec = 1
  }
  if durationSec > 8 {
    durationSec = 8
  }

  totalSamples := durationSec * toneSampleRate
  dataSize := totalSamples * 2
  buf := make([]byte, 44+dataSize)

  copy(buf[0:4], "RIFF")
  binary.LittleEndian.PutUint32(buf[4:8], uint32(dataSize+36))
  copy(buf[8:12], "WAVE")

  copy(buf[12:16], "fmt ")
  binary.LittleEndian.PutUint32(buf[16:20], 16)
  binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
  binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
  binary.LittleEndian.PutUint32(buf[24:28], toneSampleRate)
  binary.LittleEndian.PutUint32(buf[28:32], toneSampleRate*2)
  binary.LittleEndian.PutUint16(buf[32:34], 2)
  binary.LittleEndian.PutUint16(buf[34:36], 16)

  copy(buf[36:40], "data")
  binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

  amplitude := 0.2 * 32767
  for i := 0; i < totalSamples; i++ {
    t := float64(i) / toneSampleRate
    sample := int16(math.Sin(2*math.Pi*toneFrequency*t) * amplitude)
    binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(sample))
  }

  return SpeechResult{
    Audio:      buf,
    Mime:       "audio/wav",
    DurationMs: durationSec * 1000,
  }
}
