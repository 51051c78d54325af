package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"context-spotlight/config"
	"context-spotlight/rules"
)

// ErrDisabled is returned when AI features are off or the API key is not
// configured.
var ErrDisabled = errors.New("ai features are disabled")

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// Result is the outcome of one AI operation.
type Result struct {
	Result     string `json:"result"`
	ActionType string `json:"action_type"`
	SourceText string `json:"source_text"`
}

// Client talks to an OpenAI-compatible chat completions endpoint. Settings
// are re-read per call through the store so edits apply without restart.
type Client struct {
	store  *config.SettingsStore
	client *http.Client
}

func New(store *config.SettingsStore) *Client {
	return &Client{
		store: store,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Blacklisted reports whether the given process name is excluded from AI
// features by the settings blacklist.
func (c *Client) Blacklisted(process string) bool {
	settings := c.store.Load().AI
	lower := strings.ToLower(process)
	for _, app := range settings.BlacklistApps {
		appLower := strings.ToLower(app)
		if appLower == lower || strings.Contains(lower, appLower) {
			return true
		}
	}
	return false
}

// Translate auto-detects the text's language and translates it (Chinese to
// English, anything else to English, English to Chinese).
func (c *Client) Translate(text string) (Result, error) {
	const system = `You are a professional translator. Detect the language of the input and translate it:
- Chinese input: translate to English
- English input: translate to Chinese
- any other language: translate to English
Preserve technical terms, acronyms, citations like [20], and figure references.
The input is Markdown; keep the Markdown structure intact.
Respond with ONLY the translation.`

	out, err := c.chat(system, "Translate the following text: "+text, 0.3)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: out, ActionType: "translate", SourceText: text}, nil
}

// Summarize produces a concise summary of the text.
func (c *Client) Summarize(text string) (Result, error) {
	const system = `You are a text summarization assistant.
Provide a concise, accurate summary of the input text.
Focus on key points and main ideas.
Respond with ONLY the summary, no explanations.`

	out, err := c.chat(system, "Summarize the following text: "+text, 0.4)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: out, ActionType: "summarize", SourceText: text}, nil
}

// Process applies a named intent (format_text, extract_info, rewrite, ...) to
// unstructured text.
func (c *Client) Process(text, intent string) (Result, error) {
	const system = `You are a text processing assistant.
Process the input text according to the user's intent and provide a clear,
well-structured result. Respond with ONLY the processed result.`

	out, err := c.chat(system, fmt.Sprintf("Intent: %s\nText: %s", intent, text), 0.5)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: out, ActionType: "process", SourceText: text}, nil
}

// GenerateRule asks the model to produce a rule definition from a plain-text
// description. The reply must be the rule JSON, optionally fenced.
func (c *Client) GenerateRule(description string) (rules.Rule, error) {
	const system = `You are a rule generation assistant for a context-aware text action tool.
Generate a rule configuration from the user's description.

Rules have this structure:
{
  "meta": { "id": "unique-id", "name": "Display Name", "version": "1.0.0" },
  "scope": { "include": ["*"], "priority": 80 },
  "trigger": { "type": "regex", "pattern": "REGEX_PATTERN" },
  "action": { "type": "ACTION_TYPE", "template": "TEMPLATE" }
}

Key points:
1. "id" must be unique and descriptive, e.g. "github-issue"
2. "priority" orders matches (higher first, 10-100 range)
3. "pattern" must be an RE2-compatible regex
4. "include" lists process names the rule applies to; ["*"] means all
5. Action types: "url" (template may use ${0} for the selected text),
   "path", "math", "script"

Return ONLY the JSON object, no markdown formatting or explanation.`

	out, err := c.chat(system, description, 0.2)
	if err != nil {
		return rules.Rule{}, err
	}

	clean := strings.TrimSpace(out)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var rule rules.Rule
	if err := json.Unmarshal([]byte(strings.TrimSpace(clean)), &rule); err != nil {
		return rules.Rule{}, fmt.Errorf("model returned invalid rule JSON: %w", err)
	}
	if rule.Meta.ID == "" {
		return rules.Rule{}, errors.New("model returned a rule without an id")
	}
	return rule, nil
}

// Chat API structures (OpenAI-compatible).
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // can be string or number
}

func (c *Client) chat(system, user string, temperature float64) (string, error) {
	settings := c.store.Load().AI
	if !settings.Enabled || settings.APIKey == "" || strings.HasPrefix(settings.APIKey, "YOUR") {
		return "", ErrDisabled
	}
	if settings.Model == "" {
		return "", errors.New("model is required in settings")
	}

	url := strings.TrimRight(settings.BaseURL, "/") + "/chat/completions"
	request := chatRequest{
		Model: settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}

	// Retry with backoff; the last error wins.
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(float64(initialDelay) * (1.5 * float64(attempt))))
		}

		content, err := c.send(url, settings.APIKey, request)
		if err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}
	return "", fmt.Errorf("failed after %d attempts: %v", maxRetries, lastErr)
}

func (c *Client) send(url, apiKey string, request chatRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	if body.Error != nil {
		return "", fmt.Errorf("API error: %s", body.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}
	if len(body.Choices) == 0 {
		return "", errors.New("no choices in API response")
	}
	return strings.TrimSpace(body.Choices[0].Message.Content), nil
}
