package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrBackend marks transport or API-side faults (timeout, HTTP error,
// empty response). ErrParse marks responses whose shape does not match the
// declared contract. The retry layer treats both the same way: backend
// responses are expected to be deterministic for the same input, so a
// malformed response is as likely transient as a dropped connection.
var (
	ErrBackend = errors.New("classification backend failure")
	ErrParse   = errors.New("classification response parse failure")
)

// Parameters are the request settings held constant for one run.
type Parameters struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Client wraps the Anthropic Messages API as a single-item boolean
// classifier. The item id is never sent to the backend; the request
// carries only name and unit.
type Client struct {
	api    anthropic.Client
	system string
	params Parameters
}

// NewClient builds a classification client. SDK-internal retries are
// disabled: the pipeline's retry policy is the only retry layer.
func NewClient(apiKey, systemPrompt string, params Parameters, timeout time.Duration, opts ...option.RequestOption) *Client {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}, opts...)

	return &Client{
		api:    anthropic.NewClient(reqOpts...),
		system: systemPrompt,
		params: params,
	}
}

type classifyRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type classifyResponse struct {
	Decision *bool `json:"decision"`
}

// Classify asks the backend whether the item accepts a half portion.
func (c *Client) Classify(ctx context.Context, name, unit string) (bool, error) {
	payload, err := json.Marshal(classifyRequest{Name: name, Unit: unit})
	if err != nil {
		return false, fmt.Errorf("%w: encoding request: %v", ErrBackend, err)
	}

	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.params.Model),
		MaxTokens:   c.params.MaxTokens,
		Temperature: anthropic.Float(c.params.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: c.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	log.Printf("llm classify model=%s tokens_in=%d tokens_out=%d",
		c.params.Model, message.Usage.InputTokens, message.Usage.OutputTokens)

	for _, block := range message.Content {
		if block.Type == "text" {
			return ParseDecision(block.Text)
		}
	}
	return false, fmt.Errorf("%w: no text content in response", ErrBackend)
}

// ParseDecision extracts the single boolean decision from the backend's
// response text. The response must be exactly one JSON object containing a
// boolean "decision" key; markdown code fences around it are tolerated.
// Anything else is a parse failure.
func ParseDecision(text string) (bool, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	dec := json.NewDecoder(strings.NewReader(text))
	var resp classifyResponse
	if err := dec.Decode(&resp); err != nil {
		return false, fmt.Errorf("%w: %v (response: %s)", ErrParse, err, truncate(text, 256))
	}
	if dec.More() {
		return false, fmt.Errorf("%w: multiple JSON values in response: %s", ErrParse, truncate(text, 256))
	}
	if resp.Decision == nil {
		return false, fmt.Errorf("%w: missing boolean \"decision\" key in response: %s", ErrParse, truncate(text, 256))
	}
	return *resp.Decision, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
}
