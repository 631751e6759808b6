package highlevel

import (
	"context"
	"sunbridge-backend/lib/timezone"
)

// Location is what the CRM calls a sub-account.
type Location struct {
	Id         string `json:"id"`
	CompanyId  string `json:"companyId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Website    string `json:"website"`
	Timezone   string `json:"timezone"`
}

type ProspectInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type LocationRequest struct {
	Name         string       `json:"name"`
	CompanyId    string       `json:"companyId,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	City         string       `json:"city,omitempty"`
	State        string       `json:"state,omitempty"`
	Country      string       `json:"country,omitempty"`
	PostalCode   string       `json:"postalCode,omitempty"`
	Website      string       `json:"website,omitempty"`
	Timezone     string       `json:"timezone,omitempty"`
	ProspectInfo ProspectInfo `json:"prospectInfo"`
}

func (r LocationRequest) withDefaults() LocationRequest {
	if r.Country == "" {
		r.Country = "US"
	}
	if r.Timezone == "" {
		r.Timezone = timezone.Location.String()
	}
	return r
}

type locationResponse struct {
	Location Location `json:"location"`
}

func (c *Client) CreateLocation(ctx context.Context, req LocationRequest) (Location, error) {
	var out Location
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", locationsApiVersion).
		SetBody(req.withDefaults()).
		SetResult(&out).
		Post("/locations/"))
	if err != nil {
		return Location{}, err
	}
	return out, nil
}

func (c *Client) GetLocation(ctx context.Context, locationId string) (Location, error) {
	var out locationResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", locationsApiVersion).
		SetResult(&out).
		Get("/locations/" + c.resolveLocation(locationId)))
	if err != nil {
		return Location{}, err
	}
	return out.Location, nil
}

func (c *Client) UpdateLocation(ctx context.Context, locationId string, req LocationRequest) (Location, error) {
	var out locationResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", locationsApiVersion).
		SetBody(req.withDefaults()).
		SetResult(&out).
		Put("/locations/" + locationId))
	if err != nil {
		return Location{}, err
	}
	return out.Location, nil
}

func (c *Client) DeleteLocation(ctx context.Context, locationId string) error {
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", locationsApiVersion).
		SetQueryParam("deleteTwilioAccount", "false").
		Delete("/locations/" + locationId))
	return err
}
