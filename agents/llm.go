package agents

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"edusynapse/config"

	"github.com/go-resty/resty/v2"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// rateLimitIndicators are substrings that identify provider throttling in
// error text or response bodies.
var rateLimitIndicators = []string{"429", "Too Many Requests", "quota", "insufficient_quota", "rate limit"}

// LLMClient wraps the configured LLM provider behind a single Complete call.
type LLMClient struct {
	client   *resty.Client
	provider string
}

// NewLLMClient selects a provider from config. Returns config.ErrNoProvider
// when no API key is set; callers fall back to rule-based behavior.
func NewLLMClient() (*LLMClient, error) {
	if config.AppConfig == nil {
		return nil, config.ErrNoProvider
	}

	provider, err := config.AppConfig.ActiveProvider()
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetTimeout(time.Duration(config.AppConfig.AgentTimeoutSec) * time.Second)

	return &LLMClient{client: client, provider: provider}, nil
}

// Provider returns the active provider name.
func (l *LLMClient) Provider() string {
	return l.provider
}

// Complete sends a system and user prompt and returns the raw model text.
// Failed calls are retried with exponential backoff; rate-limited calls wait
// out the provider's throttle window.
func (l *LLMClient) Complete(systemPrompt, userPrompt string) (string, error) {
	maxRetries := config.AppConfig.AgentMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoffDelay(attempt, lastErr))
		}

		var text string
		var err error
		switch l.provider {
		case "gemini":
			text, err = l.completeGemini(systemPrompt, userPrompt)
		default:
			text, err = l.completeOpenAI(systemPrompt, userPrompt)
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// backoffDelay picks the wait before a retry. Rate limits get a long wait
// sized to the provider's throttle window, other errors back off
// exponentially.
func backoffDelay(attempt int, lastErr error) time.Duration {
	if IsRateLimitError(lastErr) {
		waitSec := float64(config.AppConfig.AgentTimeoutSec)
		if waitSec < 55 {
			waitSec = 55
		}
		if waitSec > 120 {
			waitSec = 120
		}
		jitter := rand.Float64() * 5
		return time.Duration((waitSec + jitter) * float64(time.Second))
	}

	delay := math.Pow(2, float64(attempt))
	if delay > 60 {
		delay = 60
	}
	jitter := rand.Float64() * 1.5
	return time.Duration((delay + jitter) * float64(time.Second))
}

func (l *LLMClient) completeOpenAI(systemPrompt, userPrompt string) (string, error) {
	body := map[string]interface{}{
		"model": config.AppConfig.OpenAIModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.7,
	}

	resp, err := l.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+config.AppConfig.OpenAIKey).
		SetBody(body).
		Post(openAIChatURL)
	if err != nil {
		log.Println("OpenAI request failed:", err)
		return "", err
	}

	if resp.StatusCode() != 200 {
		log.Println("OpenAI returned status:", resp.StatusCode())
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode(), truncateBody(resp.Body()))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (l *LLMClient) completeGemini(systemPrompt, userPrompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		geminiBaseURL, config.AppConfig.GeminiModel, config.AppConfig.GeminiKey)

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": systemPrompt + "\n\n" + userPrompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.7,
		},
	}

	resp, err := l.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		log.Println("Gemini request failed:", err)
		return "", err
	}

	if resp.StatusCode() != 200 {
		log.Println("Gemini returned status:", resp.StatusCode())
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), truncateBody(resp.Body()))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// CompleteJSON runs Complete and unmarshals the extracted JSON object into out.
func (l *LLMClient) CompleteJSON(systemPrompt, userPrompt string, out interface{}) error {
	raw, err := l.Complete(systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	extracted := ExtractJSON(raw)
	if extracted == "" {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(extracted), out)
}

// ExtractJSON pulls the first JSON object out of model text, stripping
// markdown code fences when present.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "```json") {
		parts := strings.SplitN(text, "```json", 2)
		text = parts[1]
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

// IsRateLimitError reports whether an error looks like provider throttling.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(message, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
