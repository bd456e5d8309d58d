package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tmackey/docsection/internal/outline"
)

// Client infers a document outline via the Anthropic Messages API when no
// usable embedded outline exists. Inference is expensive; callers should
// memoize results per document through a Cache.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// InferOutline sends per-page text excerpts to the model and turns the
// proposed headings into leveled outline entries. The raw headings pass
// through the noise filters before level assignment.
func (c *Client) InferOutline(ctx context.Context, pages []string) ([]outline.Entry, error) {
	prompt := buildLayoutPrompt(pages)

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("layout api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout api status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("layout api error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from layout api")
	}

	text := stripCodeBlock(apiResp.Content[0].Text)

	var headings []Heading
	if err := json.Unmarshal([]byte(text), &headings); err != nil {
		return nil, fmt.Errorf("parse headings json: %w (raw: %s)", err, truncate(text, 200))
	}

	// Drop headings pointing outside the document; that is this source's
	// responsibility, not the engine's.
	valid := headings[:0]
	for _, h := range headings {
		if h.Page >= 0 && h.Page < len(pages) {
			valid = append(valid, h)
		}
	}

	return AssignLevels(FilterHeadings(valid)), nil
}

const layoutPrompt = `You are given one line per page of a document: the page number followed by the first characters of that page's text. Identify the section headings of the document (chapter and section titles, not running headers or page furniture).

Return a JSON array of objects with these fields:
- "title": the heading text (string)
- "page": the 0-indexed page number the heading appears on (integer)

List headings in document order. Respond with ONLY the JSON array, no other text.`

// excerptChars bounds how much of each page goes into the prompt.
const excerptChars = 120

func buildLayoutPrompt(pages []string) string {
	var sb strings.Builder
	sb.WriteString(layoutPrompt)
	sb.WriteString("\n\n---\n")
	for i, text := range pages {
		excerpt := strings.Join(strings.Fields(text), " ")
		if len(excerpt) > excerptChars {
			excerpt = excerpt[:excerptChars]
		}
		fmt.Fprintf(&sb, "p.%d: %s\n", i, excerpt)
	}
	return sb.String()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient provider failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
