package highlevel

import (
	"context"
	"fmt"
)

type Calendar struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	LocationId  string `json:"locationId"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	IsActive    bool   `json:"isActive"`
}

type CreateCalendarRequest struct {
	Name        string `json:"name"`
	LocationId  string `json:"locationId"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
	// CalendarType defaults to "event"
	CalendarType string `json:"calendarType,omitempty"`
}

type calendarResponse struct {
	Calendar Calendar `json:"calendar"`
}

func (c *Client) CreateCalendar(ctx context.Context, req CreateCalendarRequest) (Calendar, error) {
	if req.LocationId == "" {
		req.LocationId = c.locationId
	}
	if req.CalendarType == "" {
		req.CalendarType = "event"
	}

	var out calendarResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		SetBody(req).
		SetResult(&out).
		Post("/calendars/"))
	if err != nil {
		return Calendar{}, err
	}
	return out.Calendar, nil
}

type calendarListResponse struct {
	Calendars []Calendar `json:"calendars"`
}

func (c *Client) GetCalendars(ctx context.Context, locationId string) ([]Calendar, error) {
	locationId = c.resolveLocation(locationId)
	if locationId == "" {
		return nil, fmt.Errorf("a location id is required to list calendars")
	}

	var out calendarListResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		SetQueryParam("locationId", locationId).
		SetResult(&out).
		Get("/calendars/"))
	if err != nil {
		return nil, err
	}
	return out.Calendars, nil
}

func (c *Client) DeleteCalendar(ctx context.Context, calendarId string) error {
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		Delete("/calendars/" + calendarId))
	return err
}
