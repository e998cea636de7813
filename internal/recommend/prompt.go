// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// systemPrompt states the recommendation task for the model.
const systemPrompt = `You are an expert in academic paper recommendation. Given the titles and abstracts of papers and user's research interests, you will determine if it is a high-quality and interesting paper worth recommending to researchers in the field. A paper is considered worth recommending if it is closely related to the user's research interests, presents novel ideas or good advancements.`

// userPromptTmpl enumerates the user's interests and one block per paper,
// and mandates a JSON-array-only reply.
var userPromptTmpl = template.Must(template.New("recommend").Parse(`Here are the papers and my research interests:
My research interests: {{.Interests}}
{{range .Papers}}
Paper ID: {{.ID}}
Title: {{.Title}}
Abstract: {{.Abstract}}
{{end}}
What are the papers worth recommending and what are the categories of research interests, why do you recommend them?
Answer with JSON format and do not provide any additional explanation.
You must output ONLY a valid JSON array as the entire response.
No markdown, no backticks, no extra text, no surrounding object.

Schema of each array element:
[
  {
  "paper_id": "<string>",
  "category": "<string>",
  "reason": "<string>"
  }
]
If no papers match, output [].
Do not forget to include the brackets [] and the quotes around each paper ID.
`))

// BuildUserPrompt renders the user prompt for the given papers, joining
// the interests with commas.
func BuildUserPrompt(papers []types.Paper, interests []string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Interests string
		Papers    []types.Paper
	}{
		Interests: strings.Join(interests, ", "),
		Papers:    papers,
	}
	if err := userPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// backoffBase controls the base duration for exponential backoff on
// transport errors. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// ClaudeBackend calls the Claude Messages API. It owns transport-level
// resilience (429 backoff, retry on transient errors); the parser above
// treats its failures as opaque.
type ClaudeBackend struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt pair and returns the model's raw text reply.
func (c *ClaudeBackend) Complete(ctx context.Context, system, user string) (string, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.complete(ctx, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *ClaudeBackend) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		System:    system,
		Messages: []claudeMessage{
			{Role: "user", Content: user},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var text strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
