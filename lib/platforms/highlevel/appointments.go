package highlevel

import (
	"context"
	"fmt"
	"time"
)

type Appointment struct {
	Id                string `json:"id"`
	CalendarId        string `json:"calendarId"`
	LocationId        string `json:"locationId"`
	ContactId         string `json:"contactId"`
	Title             string `json:"title"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	Address           string `json:"address"`
	AppointmentStatus string `json:"appointmentStatus"`
	AssignedUserId    string `json:"assignedUserId"`
}

type AppointmentRequest struct {
	CalendarId          string
	LocationId          string
	ContactId           string
	AssignedUserId      string
	Title               string
	Address             string
	MeetingLocationType string
	AppointmentStatus   string
	StartTime           time.Time
	EndTime             time.Time
	IgnoreDateRange     bool
	ToNotify            bool
}

type appointmentPayload struct {
	CalendarId          string `json:"calendarId"`
	LocationId          string `json:"locationId"`
	ContactId           string `json:"contactId"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	Title               string `json:"title"`
	MeetingLocationType string `json:"meetingLocationType"`
	AppointmentStatus   string `json:"appointmentStatus"`
	AssignedUserId      string `json:"assignedUserId"`
	Address             string `json:"address"`
	IgnoreDateRange     bool   `json:"ignoreDateRange"`
	ToNotify            bool   `json:"toNotify"`
}

func (r AppointmentRequest) payload(defaultLocation string) appointmentPayload {
	p := appointmentPayload{
		CalendarId:          r.CalendarId,
		LocationId:          r.LocationId,
		ContactId:           r.ContactId,
		StartTime:           r.StartTime.Format(time.RFC3339),
		EndTime:             r.EndTime.Format(time.RFC3339),
		Title:               r.Title,
		MeetingLocationType: r.MeetingLocationType,
		AppointmentStatus:   r.AppointmentStatus,
		AssignedUserId:      r.AssignedUserId,
		Address:             r.Address,
		IgnoreDateRange:     r.IgnoreDateRange,
		ToNotify:            r.ToNotify,
	}
	if p.LocationId == "" {
		p.LocationId = defaultLocation
	}
	if p.Title == "" {
		p.Title = fmt.Sprintf("Event with %s", r.ContactId)
	}
	if p.Address == "" {
		p.Address = "Zoom"
	}
	if p.MeetingLocationType == "" {
		p.MeetingLocationType = "default"
	}
	if p.AppointmentStatus == "" {
		p.AppointmentStatus = "new"
	}
	return p
}

func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (Appointment, error) {
	var out Appointment
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		SetBody(req.payload(c.locationId)).
		SetResult(&out).
		Post("/calendars/events/appointments"))
	if err != nil {
		return Appointment{}, err
	}
	return out, nil
}

type getAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

func (c *Client) GetAppointment(ctx context.Context, appointmentId string) (Appointment, error) {
	var out getAppointmentResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		SetResult(&out).
		Get("/calendars/events/appointments/" + appointmentId))
	if err != nil {
		return Appointment{}, err
	}
	return out.Appointment, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, appointmentId string, req AppointmentRequest) (Appointment, error) {
	var out Appointment
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", appointmentsApiVersion).
		SetBody(req.payload(c.locationId)).
		SetResult(&out).
		Put("/calendars/events/appointments/" + appointmentId))
	if err != nil {
		return Appointment{}, err
	}
	return out, nil
}
