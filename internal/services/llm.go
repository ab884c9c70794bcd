package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "time"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/utils"
)

// LLMService produces the assistant reply text. It never fails the pipeline:
// when the upstream provider is unreachable or unconfigured it returns a
// deterministic templated reply instead.
type LLMService interface {
  GenerateReply(ctx context.Context, userText, persona string, cleanMode bool) string
}

type llmService struct {
  log     *logger.Logger
  client  *http.Client
  baseURL string
  apiKey  string
  model   string
}

const (
  llmMaxTokens   = 320
  llmTemperature = 0.75
)

func NewLLMService(log *logger.Logger) (LLMService, error) {
  serviceLog := log.With("service", "LLMService")
  baseURL := utils.GetEnv("NOVITA_OPENAI_BASE", "https://api.novita.ai/openai", serviceLog)
  model := utils.GetEnv("NOVITA_LLM_MODEL", "meta-llama/llama-3.1-8b-instruct", serviceLog)
  apiKey := utils.GetEnv("NOVITA_KEY", "", serviceLog)
  if apiKey == "" {
    serviceLog.Warn("NOVITA_KEY not set; replies will use the templated fallback")
  }
  httpClient := &http.Client{
    Timeout: 30 * time.Second,
  }
  return &llmService{
    log:     serviceLog,
    client:  httpClient,
    baseURL: strings.TrimRight(baseURL, "/"),
    apiKey:  apiKey,
    model:   model,
  }, nil
}

type chatCompletionRequest struct {
  Model       string                  `json:"model"`
  Messages    []chatCompletionMessage `json:"messages"`
  MaxTokens   int                     `json:"max_tokens"`
  Temperature float64                 `json:"temperature"`
}

type chatCompletionMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type chatCompletionResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
}

func (ls *llmService) GenerateReply(ctx context.Context, userText, persona string, cleanMode bool) string {
  prompt := userText
  if cleanMode {
    prompt = CleanText(prompt)
  }
  if ls.apiKey == "" {
    return fallbackReply(prompt, persona)
  }

  reply, err := ls.callChatCompletion(ctx, prompt, persona)
  if err != nil {
    ls.log.Warn("LLM call failed, using fallback reply", "error", err)
    return fallbackReply(prompt, persona)
  }
  if reply == "" {
    ls.log.Warn("LLM returned empty content, using fallback reply")
    return fallbackReply(prompt, persona)
  }
  return reply
}

func (ls *llmService) callChatCompletion(ctx context.Context, prompt, persona string) (string, error) {
  body := chatCompletionRequest{
    Model: ls.model,
    Messages: []chatCompletionMessage{
      {Role: "system", Content: systemPrompt(persona)},
      {Role: "user", Content: prompt},
    },
    MaxTokens:   llmMaxTokens,
    Temperature: llmTemperature,
  }
  payload, err := json.Marshal(body)
  if err != nil {
    return "", err
  }

  reqURL := ls.baseURL + "/chat/completions"
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
  if err != nil {
    return "", err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Authorization", "Bearer "+ls.apiKey)

  resp, err := ls.client.Do(req)
  if err != nil {
    return "", err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    return "", fmt.Errorf("LLM provider HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }
  var out chatCompletionResponse
  if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
    return "", err
  }
  if len(out.Choices) == 0 {
    return "", nil
  }
  return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func systemPrompt(persona string) string {
  trimmed := strings.TrimSpace(persona)
  if trimmed == "" {
    return "You are a friendly avatar. Keep replies conversational and under two short sentences."
  }
  return " your personality is described as: " + trimmed +
    "\nKeep replies conversational and under two short sentences. You are NOT an AI language model you are the persona above and all your responses should reflect that." +
    "\nyou are encouraged to make things up about your character like what you did that day or what you're thinking about to keep the convesation going."
}

func fallbackReply(userText, persona string) string {
  base := fmt.Sprintf("I heard: %q.", userText)
  if persona == "" {
    return base + " Let's keep the conversation going!"
  }
  flavored := NormalizeText(persona)
  if runes := []rune(flavored); len(runes) > 120 {
    flavored = string(runes[:120])
  }
  return flavored + " — " + base
}
