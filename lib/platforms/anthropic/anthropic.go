package anthropic

import (
	"context"
	"fmt"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseUrl = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	DefaultModel   = "claude-sonnet-4-5"
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Client is a minimal messages-API client, enough for prompt-based
// extraction with optional web search.
type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	ApiKey  string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("api key is not configured")
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Minute * 2)
	client.SetHeader("x-api-key", opts.ApiKey)
	client.SetHeader("anthropic-version", apiVersion)
	client.SetHeader("content-type", "application/json")

	telemetry.InstrumentResty(client, "platforms/anthropic")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{http: client}, nil
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// WebSearchTool lets the model verify company facts against the live
// website instead of hallucinating them.
func WebSearchTool(maxUses int) Tool {
	return Tool{
		Type:    "web_search_20250305",
		Name:    "web_search",
		MaxUses: maxUses,
	}
}

type CompleteRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Tools     []Tool    `json:"tools,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type completeResponse struct {
	Content []contentBlock `json:"content"`
}

// Complete sends a messages request and returns the first text block.
func (c *Client) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 1024
	}

	var out completeResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/v1/messages")
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("anthropic: status %d: %s", res.StatusCode(), res.String())
	}

	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
