package highlevel

import (
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://services.leadconnectorhq.com"

// API versions are pinned per endpoint family, the CRM rejects requests
// without a Version header.
const (
	contactsApiVersion     = "2021-07-28"
	appointmentsApiVersion = "2021-04-15"
	locationsApiVersion    = "2021-07-28"
	usersApiVersion        = "2021-07-28"
)

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables verbose request/response dumps for
// all clients created afterwards.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Client is a typed client over the CRM's REST API. All methods take a
// context and return typed responses or an *APIError carrying the
// status code and response body.
type Client struct {
	http       *resty.Client
	locationId string
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl     string
	AccessToken string
	// LocationId is the default sub-account used when an operation
	// does not specify one.
	LocationId string
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Minute)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("Content-Type", "application/json")
	if opts.AccessToken != "" {
		client.SetAuthToken(opts.AccessToken)
	}

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "platforms/highlevel")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{
		http:       client,
		locationId: opts.LocationId,
	}
}

// SetAccessToken swaps the bearer token on a live client, used by the
// keychain after a refresh.
func (c *Client) SetAccessToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) resolveLocation(locationId string) string {
	if locationId != "" {
		return locationId
	}
	return c.locationId
}
