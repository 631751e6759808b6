package n8n

import (
	"context"
	"fmt"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"sunbridge-backend/lib/timezone"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Client posts events into a workflow-automation webhook and hands the
// workflow's reply back to the caller.
type Client struct {
	http       *resty.Client
	webhookUrl string
}

type ClientOptions struct {
	WebhookUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.WebhookUrl == "" {
		return nil, fmt.Errorf("webhook url is not configured")
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	client.SetHeader("Content-Type", "application/json")

	telemetry.InstrumentResty(client, "platforms/n8n")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{http: client, webhookUrl: opts.WebhookUrl}, nil
}

// Event is the envelope every workflow invocation receives. Extra keys
// are merged top-level into the payload the way the original callers
// spread additional data into the body.
type Event struct {
	Agent     string
	Message   string
	SessionId string
	RequestId string
	Extra     map[string]any
}

func (e Event) payload() (map[string]any, error) {
	if e.Agent == "" {
		return nil, fmt.Errorf("event agent is required")
	}
	requestId := e.RequestId
	if requestId == "" {
		requestId = uuid.NewString()
	}
	out := map[string]any{
		"agent":     e.Agent,
		"message":   e.Message,
		"sessionId": e.SessionId,
		"timestamp": timezone.Now().Format(time.RFC3339),
		"requestId": requestId,
	}
	for k, v := range e.Extra {
		out[k] = v
	}
	return out, nil
}

// Result is the shape workflows reply with: a status plus a free-form
// response field.
type Result struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

func (c *Client) Send(ctx context.Context, event Event) (Result, error) {
	payload, err := event.payload()
	if err != nil {
		return Result{}, err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal event: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(encoded).
		Post(c.webhookUrl)
	if err != nil {
		return Result{}, err
	}
	if res.IsError() {
		return Result{}, fmt.Errorf("n8n webhook: status %d: %s", res.StatusCode(), res.String())
	}

	var out Result
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		// some workflows reply with plain text, keep it as the response
		return Result{Status: "ok", Response: json.RawMessage(res.Body())}, nil
	}
	return out, nil
}
