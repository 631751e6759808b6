package supabase

import (
	"fmt"
	"strings"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Client talks to a hosted postgrest-style table API. It deliberately
// stays generic: the schema is owned by the hosted backend, scripts
// read and write whichever columns they need.
type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// ProjectUrl is the project base, e.g. https://xyz.supabase.co
	ProjectUrl string
	// ServiceKey is used both as the apikey header and the bearer token.
	ServiceKey string
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.ProjectUrl, "/") + "/rest/v1")
	client.SetTimeout(time.Second * 30)
	client.SetHeader("apikey", opts.ServiceKey)
	client.SetAuthToken(opts.ServiceKey)
	client.SetHeader("Content-Type", "application/json")

	telemetry.InstrumentResty(client, "platforms/supabase")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{http: client}
}

// QueryError carries the table API's status and body verbatim.
type QueryError struct {
	Status int
	Body   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

func (c *Client) From(table string) *Query {
	return &Query{
		client: c,
		table:  table,
		method: "GET",
	}
}
