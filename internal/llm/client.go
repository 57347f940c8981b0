// Package llm calls an external text-generation endpoint to draft case
// summaries. Every failure mode (bad credential, transport error, non-200,
// unrepairable JSON) is logged and reported as an absent result so the
// caller can fall back to the rule-based path.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"casedesk/internal/domain"
	"casedesk/internal/httpx"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel   = "llama-3.1-8b-instant"

	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	maxLoggedContentChars = 400
)

// Client talks to one configured provider. The zero-value-ish client from
// NewClient targets an OpenAI-compatible chat-completions endpoint; provider
// "anthropic" switches to the Anthropic SDK.
type Client struct {
	provider string
	model    string
	baseURL  string
}

// NewClient builds a client for the configured provider, model and base URL.
// Empty values fall back to the Groq-compatible defaults.
func NewClient(provider, model, baseURL string) *Client {
	c := &Client{
		provider: strings.ToLower(strings.TrimSpace(provider)),
		model:    strings.TrimSpace(model),
		baseURL:  strings.TrimSpace(baseURL),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		if c.provider == "anthropic" {
			c.model = defaultAnthropicModel
		} else {
			c.model = defaultModel
		}
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ValidateCredential makes a minimal-cost test call. False means the key is
// empty, rejected with 401, or the endpoint was unreachable; any of those is
// logged, never surfaced as an error.
func (c *Client) ValidateCredential(ctx context.Context, key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	if c.provider == "anthropic" {
		return c.validateAnthropic(ctx, key)
	}

	reqBody := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}
	status, _, err := c.post(ctx, httpx.ValidateClient, key, reqBody)
	if err != nil {
		log.Printf("llm validate transport error provider=%s err=%v", c.providerName(), err)
		return false
	}
	if status == http.StatusUnauthorized {
		log.Printf("llm validate rejected provider=%s status=401", c.providerName())
		return false
	}
	// Any other status means the key passed auth; rate limits and model
	// errors are not credential problems.
	return true
}

func (c *Client) validateAnthropic(ctx context.Context, key string) bool {
	client := anthropic.NewClient(option.WithAPIKey(key))
	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		log.Printf("llm validate failed provider=anthropic err=%v", err)
		return false
	}
	return true
}

// modelDraft is the JSON shape the prompt demands from the model.
type modelDraft struct {
	DraftSummary           string   `json:"draft_summary"`
	IssueType              string   `json:"issue_type"`
	CustomerAsk            []string `json:"customer_ask"`
	RecommendedDisposition string   `json:"recommended_disposition"`
	NextActions            []string `json:"next_actions"`
}

// Generate asks the model for a draft summary. A nil result means the call
// failed in some way and the caller should use the rule-based path. One
// attempt only; the fallback, not a retry, handles failure.
func (c *Client) Generate(ctx context.Context, thread domain.Thread, key string) *domain.SummaryResult {
	systemPrompt, userPrompt := buildPrompts(thread)

	var content string
	if c.provider == "anthropic" {
		text, err := c.generateAnthropic(ctx, key, systemPrompt, userPrompt)
		if err != nil {
			log.Printf("llm generate failed provider=anthropic model=%s err=%v", c.model, err)
			return nil
		}
		content = text
	} else {
		reqBody := chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
			Temperature: 0.2,
			MaxTokens:   1024,
		}
		status, body, err := c.post(ctx, httpx.GenerateClient, key, reqBody)
		if err != nil {
			log.Printf("llm generate transport error provider=%s err=%v", c.providerName(), err)
			return nil
		}
		if status != http.StatusOK {
			log.Printf("llm generate rejected provider=%s status=%d body=%s", c.providerName(), status, truncate(string(body), maxLoggedContentChars))
			return nil
		}
		content = gjson.GetBytes(body, "choices.0.message.content").String()
		if content == "" {
			log.Printf("llm generate empty content provider=%s body=%s", c.providerName(), truncate(string(body), maxLoggedContentChars))
			return nil
		}
	}

	draft, err := parseModelDraft(content)
	if err != nil {
		log.Printf("llm generate unparseable response err=%v content=%s", err, truncate(content, maxLoggedContentChars))
		return nil
	}

	log.Printf("llm generate ok provider=%s model=%s thread=%s size=%d", c.providerName(), c.model, thread.ThreadID, len(content))
	return draft.toResult()
}

func (c *Client) generateAnthropic(ctx context.Context, key, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(key))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", err
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

func (c *Client) post(ctx context.Context, hc *http.Client, key string, reqBody chatRequest) (int, []byte, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) providerName() string {
	if c.provider == "" {
		return "openai-compatible"
	}
	return c.provider
}

// parseModelDraft runs the response pipeline: strip code fence, parse, and
// on failure escape raw newlines inside strings and retry once.
func parseModelDraft(content string) (*modelDraft, error) {
	payload := stripCodeFence(content)

	var draft modelDraft
	if err := json.Unmarshal([]byte(payload), &draft); err == nil {
		return &draft, nil
	}
	repaired := escapeNewlinesInStrings(payload)
	if err := json.Unmarshal([]byte(repaired), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// toResult maps the model's fields into the standard shape. Enum values are
// validated here; structural fields like thread_id are filled by the caller,
// never trusted from the model.
func (d *modelDraft) toResult() *domain.SummaryResult {
	fields := domain.DraftFields{
		IssueType:              domain.NormalizeIssueType(strings.TrimSpace(d.IssueType)),
		RecommendedDisposition: domain.NormalizeDisposition(strings.TrimSpace(d.RecommendedDisposition)),
		CurrentStatus:          "Unresolved",
	}

	seen := make(map[domain.Ask]bool)
	for _, raw := range d.CustomerAsk {
		ask := domain.Ask(strings.ToLower(strings.TrimSpace(raw)))
		switch ask {
		case domain.AskRefund, domain.AskReplacement, domain.AskReturn,
			domain.AskPhotos, domain.AskAddress, domain.AskTracking:
			if !seen[ask] {
				seen[ask] = true
				fields.CustomerAsk = append(fields.CustomerAsk, ask)
			}
		}
	}

	for _, action := range d.NextActions {
		if a := strings.TrimSpace(action); a != "" {
			fields.NextActions = append(fields.NextActions, a)
		}
	}

	return &domain.SummaryResult{
		DraftSummary: strings.TrimSpace(d.DraftSummary),
		DraftFields:  fields,
	}
}

func buildPrompts(thread domain.Thread) (string, string) {
	systemPrompt := fmt.Sprintf(`You summarize customer-support conversation threads for agent review.

Respond with a single JSON object on one line and nothing else (no markdown,
no code fences). Escape every newline inside string values as \n.

Schema:
{"draft_summary": "...", "issue_type": "...", "customer_ask": ["..."], "recommended_disposition": "...", "next_actions": ["..."]}

Rules:
- issue_type must be one of: %s
- customer_ask values must come from: refund, replacement, return, photos, address, tracking
- recommended_disposition must be one of: %s
- next_actions is a short ordered list of concrete agent steps`,
		joinIssueTypes(), joinDispositions())

	var b strings.Builder
	fmt.Fprintf(&b, "Thread %s\n", thread.ThreadID)
	fmt.Fprintf(&b, "Subject: %s\n", thread.Subject)
	fmt.Fprintf(&b, "Topic: %s\n", thread.Topic)
	fmt.Fprintf(&b, "Order: %s\n", thread.OrderID)
	fmt.Fprintf(&b, "Product: %s\n", thread.Product)
	fmt.Fprintf(&b, "Initiated by: %s\n\nMessages:\n", thread.InitiatedBy)
	for _, m := range thread.Messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp, m.Sender, m.Body)
	}
	return systemPrompt, b.String()
}

func joinIssueTypes() string {
	parts := make([]string, 0, len(domain.IssueTypes))
	for _, it := range domain.IssueTypes {
		parts = append(parts, string(it))
	}
	return strings.Join(parts, "; ")
}

func joinDispositions() string {
	parts := make([]string, 0, len(domain.Dispositions))
	for _, d := range domain.Dispositions {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
