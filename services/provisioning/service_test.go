package provisioning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBackends struct {
	mux *http.ServeMux

	existingRows  []SubaccountRow
	existingUsers []highlevel.User

	failLocation bool
	failUser     bool
	failRegistry bool
	failWorkflow bool

	createdLocation map[string]any
	createdUser     map[string]any
	upsertedRows    []SubaccountRow
	workflowEvents  []map[string]any
}

func newFakeBackends(t *testing.T) *fakeBackends {
	f := &fakeBackends{mux: http.NewServeMux()}

	f.mux.HandleFunc("GET /rest/v1/ghl_subaccounts", func(w http.ResponseWriter, r *http.Request) {
		rows := []SubaccountRow{}
		target := r.URL.Query().Get("firm_user_id")
		for _, row := range f.existingRows {
			if "eq."+row.FirmUserId == target {
				rows = append(rows, row)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(rows))
	})
	f.mux.HandleFunc("POST /rest/v1/ghl_subaccounts", func(w http.ResponseWriter, r *http.Request) {
		if f.failRegistry {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var rows []SubaccountRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		f.upsertedRows = append(f.upsertedRows, rows...)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	})

	f.mux.HandleFunc("GET /users/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"users": f.existingUsers,
		}))
	})
	f.mux.HandleFunc("POST /locations/", func(w http.ResponseWriter, r *http.Request) {
		if f.failLocation {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid"}`))
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.createdLocation))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"loc_123","name":"Test Firm"}`))
	})
	f.mux.HandleFunc("POST /users/", func(w http.ResponseWriter, r *http.Request) {
		if f.failUser {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid"}`))
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.createdUser))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user_456"}`))
	})

	f.mux.HandleFunc("POST /webhook/onboard", func(w http.ResponseWriter, r *http.Request) {
		if f.failWorkflow {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var event map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		f.workflowEvents = append(f.workflowEvents, event)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","response":"queued"}`))
	})

	return f
}

func setup(t *testing.T, backends *fakeBackends) (*Service, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:services/provisioning")

	server := httptest.NewServer(backends.mux)

	crm := highlevel.NewClient(highlevel.ClientOptions{
		BaseUrl:     server.URL,
		AccessToken: "test-token",
	})
	supa := supabase.NewClient(supabase.ClientOptions{
		ProjectUrl: server.URL,
		ServiceKey: "service-key",
	})
	flows, err := n8n.NewClient(n8n.ClientOptions{
		WebhookUrl: server.URL + "/webhook/onboard",
	})
	require.NoError(t, err)

	service := NewService(crm, supa, flows, Options{
		CompanyId:      "company_1",
		HomeLocationId: "loc_home",
	})
	return service, func() {
		server.Close()
		cleanup()
	}
}

func request() ProvisionRequest {
	return ProvisionRequest{
		FirmUserId: "firm_42",
		FirmName:   "Test Firm",
		FirstName:  "Ana",
		LastName:   "Lopez",
		Email:      "ana@testfirm.example",
		Phone:      "+15551230000",
		Website:    "https://testfirm.example",
		City:       "El Paso",
		State:      "TX",
	}
}

func TestProvision(t *testing.T) {
	backends := newFakeBackends(t)
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	result, err := service.Provision(ctx, request())
	require.NoError(t, err)
	require.Equal(t, "loc_123", result.LocationId)
	require.Equal(t, "user_456", result.UserId)
	require.NotEmpty(t, result.TempPassword)
	require.True(t, result.Registered)
	require.False(t, result.Invited)

	require.Equal(t, "Test Firm", backends.createdLocation["name"])
	require.Equal(t, "US", backends.createdLocation["country"])

	require.Equal(t, "account", backends.createdUser["type"])
	require.Equal(t, "admin", backends.createdUser["role"])
	require.Equal(t, []any{"loc_123"}, backends.createdUser["locationIds"])

	require.Len(t, backends.upsertedRows, 1)
	require.Equal(t, SubaccountRow{
		FirmUserId: "firm_42",
		AgentId:    DefaultAgentId,
		LocationId: "loc_123",
	}, backends.upsertedRows[0])

	require.Len(t, backends.workflowEvents, 1)
	require.Equal(t, DefaultAgentId, backends.workflowEvents[0]["agent"])
	require.Equal(t, "loc_123", backends.workflowEvents[0]["locationId"])
}

func TestProvisionAlreadyProvisioned(t *testing.T) {
	backends := newFakeBackends(t)
	backends.existingRows = []SubaccountRow{{
		FirmUserId: "firm_42",
		AgentId:    DefaultAgentId,
		LocationId: "loc_old",
	}}
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := service.Provision(ctx, request())
	require.ErrorIs(t, err, ErrAlreadyProvisioned)
	require.Nil(t, backends.createdLocation)
}

func TestProvisionDuplicateUser(t *testing.T) {
	backends := newFakeBackends(t)
	backends.existingUsers = []highlevel.User{
		{Id: "user_9", Name: "Anna Lopez", Email: "anna@elsewhere.example"},
	}
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := service.Provision(ctx, request())
	require.ErrorIs(t, err, ErrDuplicateUser)
	require.Nil(t, backends.createdLocation)
}

func TestProvisionLocationFailureAborts(t *testing.T) {
	backends := newFakeBackends(t)
	backends.failLocation = true
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	result, err := service.Provision(ctx, request())
	require.Error(t, err)
	require.Empty(t, result.LocationId)
	require.Empty(t, backends.upsertedRows)
}

func TestProvisionPartialFailureReturnsIds(t *testing.T) {
	backends := newFakeBackends(t)
	backends.failWorkflow = true
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	result, err := service.Provision(ctx, request())
	require.Error(t, err)
	require.Equal(t, "loc_123", result.LocationId)
	require.Equal(t, "user_456", result.UserId)
	require.False(t, result.Registered)
}
