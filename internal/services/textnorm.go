package services

import (
  "strings"
)

const (
  // MaxAssistantChars caps both the stored user text and the generated reply.
  MaxAssistantChars = 280
  // WordsPerSegment is the chunk size for per-segment lip-sync rendering.
  WordsPerSegment = 20
  // SkipShortReplyChars is the threshold below which the skip-short-replies
  // setting bypasses lip-sync entirely.
  SkipShortReplyChars = 12

  ellipsis = "…"
)

// NormalizeText collapses whitespace runs to single spaces and trims the ends.
func NormalizeText(input string) string {
  return strings.Join(strings.Fields(input), " ")
}

// TruncateText bounds text to max characters. Over-long input is cut at a rune
// boundary to max-1 characters plus an ellipsis, so the result is exactly max
// characters long.
func TruncateText(text string, max int) string {
  runes := []rune(text)
  if len(runes) <= max {
    return text
  }
  return string(runes[:max-1]) + ellipsis
}

// profaneTokens is deliberately tiny. CleanText is advisory obfuscation for
// the clean-mode setting, not moderation.
var profaneTokens = []string{"shit", "fuck", "damn", "bitch"}

const profanityMask = "***"

// CleanText masks a fixed set of profane tokens case-insensitively, matching
// inside larger words the way the mobile app always has.
func CleanText(text string) string {
  if text == "" {
    return text
  }
  lower := strings.ToLower(text)
  var b strings.Builder
  i := 0
  for i < len(text) {
    matched := 0
    for _, token := range profaneTokens {
      if strings.HasPrefix(lower[i:], token) {
        matched = len(token)
        break
      }
    }
    if matched > 0 {
      b.WriteString(profanityMask)
      i += matched
      continue
    }
    b.WriteByte(text[i])
    i++
  }
  return b.String()
}

// SegmentText splits text into ordered chunks of at most wordsPerChunk words,
// single-space joined. Empty input yields an empty slice, which the
// orchestrator treats as "no lip-sync possible".
func SegmentText(text string, wordsPerChunk int) []string {
  words := strings.Fields(text)
  if len(words) == 0 {
    return nil
  }
  chunks := make([]string, 0, (len(words)+wordsPerChunk-1)/wordsPerChunk)
  for i := 0; i < len(words); i += wordsPerChunk {
    end := i + wordsPerChunk
    if end > len(words) {
      end = len(words)
    }
    chunks = append(chunks, strings.Join(words[i:end], " "))
  }
  return chunks
}
