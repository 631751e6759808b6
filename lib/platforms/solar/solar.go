package solar

import (
	"context"
	"fmt"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const DefaultBaseUrl = "https://api.realwave.com"

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Client wraps the hosted solar-analysis API (building insights and
// data layers by street address). Responses are cached in memory since
// rooftops do not change between requests.
type Client struct {
	http  *resty.Client
	cache *ttlCache
}

type ClientOptions struct {
	BaseUrl string
	ApiKey  string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("solar api key is not configured")
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 60)
	client.SetAuthToken(opts.ApiKey)
	client.SetHeader("Content-Type", "application/json")

	telemetry.InstrumentResty(client, "platforms/solar")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{
		http:  client,
		cache: newTtlCache(time.Hour, 100),
	}, nil
}

type InsightsMode string

const (
	ModeFull    InsightsMode = "full"
	ModeSummary InsightsMode = "summary"
)

type InsightsRequest struct {
	Address string       `json:"address"`
	Mode    InsightsMode `json:"mode"`
}

// BuildingInsights keeps the fields the sales flow actually reads;
// Raw holds everything for callers that need more.
type BuildingInsights struct {
	Name            string          `json:"name"`
	MaxPanelCount   int             `json:"maxArrayPanelsCount"`
	YearlyEnergyKwh float64         `json:"yearlyEnergyDcKwh"`
	RoofAreaM2      float64         `json:"maxArrayAreaMeters2"`
	SunshineHours   float64         `json:"maxSunshineHoursPerYear"`
	Raw             json.RawMessage `json:"-"`
}

func (c *Client) GetBuildingInsights(ctx context.Context, req InsightsRequest) (BuildingInsights, error) {
	if req.Mode == "" {
		req.Mode = ModeSummary
	}
	cacheKey := fmt.Sprintf("insights_%s_%s", req.Address, req.Mode)
	if cached, ok := c.cache.get(cacheKey); ok {
		return cached.(BuildingInsights), nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/googleSolar/insights")
	if err != nil {
		return BuildingInsights{}, err
	}
	if res.StatusCode() == 401 || res.StatusCode() == 403 {
		return BuildingInsights{}, fmt.Errorf("solar api authentication failed, check the api key")
	}
	if res.IsError() {
		return BuildingInsights{}, fmt.Errorf("solar api: status %d: %s", res.StatusCode(), res.String())
	}

	var out BuildingInsights
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return BuildingInsights{}, fmt.Errorf("unmarshal insights: %w", err)
	}
	out.Raw = json.RawMessage(res.Body())

	c.cache.set(cacheKey, out)
	return out, nil
}

type DataLayersRequest struct {
	Address      string `json:"address"`
	RenderPanels bool   `json:"renderPanels"`
}

type DataLayers struct {
	ImageryDate string          `json:"imageryDate"`
	MaskUrl     string          `json:"maskUrl"`
	RgbUrl      string          `json:"rgbUrl"`
	FluxUrl     string          `json:"annualFluxUrl"`
	Raw         json.RawMessage `json:"-"`
}

func (c *Client) GetDataLayers(ctx context.Context, req DataLayersRequest) (DataLayers, error) {
	cacheKey := fmt.Sprintf("layers_%s_%t", req.Address, req.RenderPanels)
	if cached, ok := c.cache.get(cacheKey); ok {
		return cached.(DataLayers), nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/googleSolar/dataLayers")
	if err != nil {
		return DataLayers{}, err
	}
	if res.IsError() {
		return DataLayers{}, fmt.Errorf("solar api: status %d: %s", res.StatusCode(), res.String())
	}

	var out DataLayers
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return DataLayers{}, fmt.Errorf("unmarshal data layers: %w", err)
	}
	out.Raw = json.RawMessage(res.Body())

	c.cache.set(cacheKey, out)
	return out, nil
}
