package highlevel

import (
	"context"
	"fmt"
	"sunbridge-backend/lib/timezone"
)

type DndChannelSetting struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type InboundDndSetting struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Contact struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	LocationId  string   `json:"locationId"`
	CompanyName string   `json:"companyName"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
	Country     string   `json:"country"`
	DateAdded   string   `json:"dateAdded"`
}

type CreateContactRequest struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	LocationId  string
	Gender      string
	Address1    string
	City        string
	State       string
	PostalCode  string
	Website     string
	Timezone    string
	Dnd         bool
	Country     string
	CompanyName string
	AssignedTo  string
	Tags        []string
	Source      string
}

type contactPayload struct {
	FirstName          string                       `json:"firstName"`
	LastName           string                       `json:"lastName"`
	Name               string                       `json:"name"`
	Email              string                       `json:"email"`
	LocationId         string                       `json:"locationId"`
	Phone              string                       `json:"phone"`
	Timezone           string                       `json:"timezone"`
	Dnd                bool                         `json:"dnd"`
	Country            string                       `json:"country"`
	Source             string                       `json:"source"`
	AssignedTo         string                       `json:"assignedTo,omitempty"`
	Gender             string                       `json:"gender,omitempty"`
	Address1           string                       `json:"address1,omitempty"`
	City               string                       `json:"city,omitempty"`
	State              string                       `json:"state,omitempty"`
	PostalCode         string                       `json:"postalCode,omitempty"`
	Website            string                       `json:"website,omitempty"`
	CompanyName        string                       `json:"companyName,omitempty"`
	Tags               []string                     `json:"tags,omitempty"`
	DndSettings        map[string]DndChannelSetting `json:"dndSettings,omitempty"`
	InboundDndSettings map[string]InboundDndSetting `json:"inboundDndSettings,omitempty"`
}

// dnd channels the CRM recognizes, an active entry is created for each
// when the contact opts out
var dndChannels = []string{"Call", "Email", "SMS", "WhatsApp", "GMB", "FB"}

func (r CreateContactRequest) payload(defaultLocation string) contactPayload {
	p := contactPayload{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Name:        fmt.Sprintf("%s %s", r.FirstName, r.LastName),
		Email:       r.Email,
		LocationId:  r.LocationId,
		Phone:       r.Phone,
		Timezone:    r.Timezone,
		Dnd:         r.Dnd,
		Country:     r.Country,
		Source:      r.Source,
		AssignedTo:  r.AssignedTo,
		Gender:      r.Gender,
		Address1:    r.Address1,
		City:        r.City,
		State:       r.State,
		PostalCode:  r.PostalCode,
		Website:     r.Website,
		CompanyName: r.CompanyName,
		Tags:        r.Tags,
	}
	if p.LocationId == "" {
		p.LocationId = defaultLocation
	}
	if p.Timezone == "" {
		p.Timezone = timezone.Location.String()
	}
	if p.Country == "" {
		p.Country = "US"
	}
	if p.Source == "" {
		p.Source = "public api"
	}
	if r.Dnd {
		p.DndSettings = map[string]DndChannelSetting{}
		for _, channel := range dndChannels {
			p.DndSettings[channel] = DndChannelSetting{Status: "active"}
		}
		p.InboundDndSettings = map[string]InboundDndSetting{
			"all": {Status: "active"},
		}
	}
	return p
}

type createContactResponse struct {
	Contact Contact `json:"contact"`
}

func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (Contact, error) {
	var out createContactResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", contactsApiVersion).
		SetBody(req.payload(c.locationId)).
		SetResult(&out).
		Post("/contacts/"))
	if err != nil {
		return Contact{}, err
	}
	return out.Contact, nil
}

type contactListResponse struct {
	Contacts []Contact `json:"contacts"`
	Meta     struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// GetContacts lists every contact under a location. An empty locationId
// falls back to the client default.
func (c *Client) GetContacts(ctx context.Context, locationId string) ([]Contact, error) {
	locationId = c.resolveLocation(locationId)
	if locationId == "" {
		return nil, fmt.Errorf("a location id is required to list contacts")
	}

	var out contactListResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", contactsApiVersion).
		SetQueryParam("locationId", locationId).
		SetResult(&out).
		Get("/contacts/"))
	if err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

func (c *Client) DeleteContact(ctx context.Context, contactId string) error {
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", contactsApiVersion).
		Delete("/contacts/" + contactId))
	return err
}
