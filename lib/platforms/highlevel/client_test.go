package highlevel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mockServer(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		BaseUrl:     server.URL,
		AccessToken: "test-token",
		LocationId:  "loc_default",
	})
}

func TestCreateContactDefaults(t *testing.T) {
	var captured contactPayload
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/contacts/", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, contactsApiVersion, r.Header.Get("Version"))

		err := json.NewDecoder(r.Body).Decode(&captured)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createContactResponse{
			Contact: Contact{Id: "contact_1", Email: captured.Email},
		})
	})

	contact, err := client.CreateContact(context.Background(), CreateContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+15551234567",
		Dnd:       true,
	})
	require.NoError(t, err)
	require.Equal(t, "contact_1", contact.Id)

	require.Equal(t, "Ada Lovelace", captured.Name)
	require.Equal(t, "loc_default", captured.LocationId)
	require.Equal(t, "America/Chihuahua", captured.Timezone)
	require.Equal(t, "US", captured.Country)
	require.Equal(t, "public api", captured.Source)
	require.Len(t, captured.DndSettings, 6)
	require.Equal(t, "active", captured.DndSettings["SMS"].Status)
	require.Equal(t, "active", captured.InboundDndSettings["all"].Status)
}

func TestGetContacts(t *testing.T) {
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "loc_42", r.URL.Query().Get("locationId"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"contacts": []Contact{
				{Id: "a", Email: "a@example.com"},
				{Id: "b", Email: "b@example.com"},
			},
			"meta": map[string]any{"total": 2},
		})
	})

	contacts, err := client.GetContacts(context.Background(), "loc_42")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	require.Equal(t, "a", contacts[0].Id)
}

func TestApiError(t *testing.T) {
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"phone is invalid"}`))
	})

	_, err := client.CreateContact(context.Background(), CreateContactRequest{
		FirstName: "Bad",
		LastName:  "Phone",
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Contains(t, apiErr.Body, "phone is invalid")
}

func TestCreateAppointmentDefaults(t *testing.T) {
	var captured appointmentPayload
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/events/appointments", r.URL.Path)
		require.Equal(t, appointmentsApiVersion, r.Header.Get("Version"))

		err := json.NewDecoder(r.Body).Decode(&captured)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Appointment{Id: "appt_1"})
	})

	start := time.Date(2025, 11, 27, 5, 30, 0, 0, time.UTC)
	appt, err := client.CreateAppointment(context.Background(), AppointmentRequest{
		CalendarId: "cal_1",
		ContactId:  "contact_1",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "appt_1", appt.Id)

	require.Equal(t, "loc_default", captured.LocationId)
	require.Equal(t, "Event with contact_1", captured.Title)
	require.Equal(t, "Zoom", captured.Address)
	require.Equal(t, "new", captured.AppointmentStatus)
	require.Equal(t, "default", captured.MeetingLocationType)
	require.Equal(t, start.Format(time.RFC3339), captured.StartTime)
}

func TestCreateUserDefaults(t *testing.T) {
	var captured CreateUserRequest
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/", r.URL.Path)
		err := json.NewDecoder(r.Body).Decode(&captured)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{Id: "user_1", Email: captured.Email})
	})

	user, err := client.CreateUser(context.Background(), CreateUserRequest{
		CompanyId:   "comp_1",
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       "grace@example.com",
		Password:    "s3cr3t!",
		LocationIds: []string{"loc_42"},
		Permissions: AllUserPermissions(),
	})
	require.NoError(t, err)
	require.Equal(t, "user_1", user.Id)
	require.Equal(t, "account", captured.Type)
	require.Equal(t, "admin", captured.Role)
}

func TestRefreshAccessToken(t *testing.T) {
	client := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    86399,
			TokenType:    "Bearer",
		})
	})

	token, err := client.RefreshAccessToken(context.Background(), RefreshTokenRequest{
		ClientId:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "old-refresh",
	})
	require.NoError(t, err)
	require.Equal(t, "new-access", token.AccessToken)
	require.EqualValues(t, 86399, token.ExpiresIn)
}

func TestGetContactsRequiresLocation(t *testing.T) {
	client := NewClient(ClientOptions{BaseUrl: "http://localhost:0"})
	_, err := client.GetContacts(context.Background(), "")
	require.Error(t, err)
}
