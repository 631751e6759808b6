package highlevel

import (
	"context"
	"fmt"
)

type UserPermissions struct {
	CampaignsEnabled      bool `json:"campaignsEnabled"`
	ContactsEnabled       bool `json:"contactsEnabled"`
	WorkflowsEnabled      bool `json:"workflowsEnabled"`
	OpportunitiesEnabled  bool `json:"opportunitiesEnabled"`
	AppointmentsEnabled   bool `json:"appointmentsEnabled"`
	ConversationsEnabled  bool `json:"conversationsEnabled"`
	SettingsEnabled       bool `json:"settingsEnabled"`
	DashboardStatsEnabled bool `json:"dashboardStatsEnabled"`
	MarketingEnabled      bool `json:"marketingEnabled"`
}

// AllUserPermissions is the permission set granted to the admin user a
// new sub-account is provisioned with.
func AllUserPermissions() UserPermissions {
	return UserPermissions{
		CampaignsEnabled:      true,
		ContactsEnabled:       true,
		WorkflowsEnabled:      true,
		OpportunitiesEnabled:  true,
		AppointmentsEnabled:   true,
		ConversationsEnabled:  true,
		SettingsEnabled:       true,
		DashboardStatsEnabled: true,
		MarketingEnabled:      true,
	}
}

type User struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Roles       Roles    `json:"roles"`
	LocationIds []string `json:"locationIds"`
}

type Roles struct {
	Type        string   `json:"type"`
	Role        string   `json:"role"`
	LocationIds []string `json:"locationIds"`
}

type CreateUserRequest struct {
	CompanyId   string          `json:"companyId"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	PhoneNumber string          `json:"phone,omitempty"`
	Type        string          `json:"type"`
	Role        string          `json:"role"`
	LocationIds []string        `json:"locationIds"`
	Permissions UserPermissions `json:"permissions"`
}

func (r CreateUserRequest) withDefaults() CreateUserRequest {
	if r.Type == "" {
		r.Type = "account"
	}
	if r.Role == "" {
		r.Role = "admin"
	}
	return r
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	var out User
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", usersApiVersion).
		SetBody(req.withDefaults()).
		SetResult(&out).
		Post("/users/"))
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, userId string) (User, error) {
	var out User
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", usersApiVersion).
		SetResult(&out).
		Get("/users/" + userId))
	if err != nil {
		return User{}, err
	}
	return out, nil
}

type userListResponse struct {
	Users []User `json:"users"`
}

// GetUsersByLocation lists every user attached to a sub-account.
func (c *Client) GetUsersByLocation(ctx context.Context, locationId string) ([]User, error) {
	locationId = c.resolveLocation(locationId)
	if locationId == "" {
		return nil, fmt.Errorf("a location id is required to list users")
	}

	var out userListResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", usersApiVersion).
		SetQueryParam("locationId", locationId).
		SetResult(&out).
		Get("/users/"))
	if err != nil {
		return nil, err
	}
	return out.Users, nil
}

type UpdateUserRequest struct {
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Password    string   `json:"password,omitempty"`
	PhoneNumber string   `json:"phone,omitempty"`
	LocationIds []string `json:"locationIds,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, userId string, req UpdateUserRequest) (User, error) {
	var out User
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", usersApiVersion).
		SetBody(req).
		SetResult(&out).
		Put("/users/" + userId))
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, userId string) error {
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Version", usersApiVersion).
		Delete("/users/" + userId))
	return err
}
