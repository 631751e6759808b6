package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sunbridge-backend/lib/platforms/anthropic"
	"sunbridge-backend/lib/platforms/solar"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/telemetry"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const extractionLine = `Company name: Acme Injury Law | Website: https://acme.example | Contact: intake@acme.example | Description: A personal injury firm in El Paso. | Tags: legal, personal injury, El Paso | Takeaways: no live chat, slow intake form | Niche: personal injury law`

type fakeBackends struct {
	mux *http.ServeMux

	cachedRows  []analysisRow
	aiCalls     int
	upsertedRow *analysisRow
}

func newFakeBackends(t *testing.T) *fakeBackends {
	f := &fakeBackends{mux: http.NewServeMux()}

	f.mux.HandleFunc("GET /rest/v1/company_analysis", func(w http.ResponseWriter, r *http.Request) {
		rows := []analysisRow{}
		target := r.URL.Query().Get("website")
		for _, row := range f.cachedRows {
			if "eq."+row.Website == target {
				rows = append(rows, row)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(rows))
	})
	f.mux.HandleFunc("POST /rest/v1/company_analysis", func(w http.ResponseWriter, r *http.Request) {
		var rows []analysisRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		f.upsertedRow = &rows[0]
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	})

	f.mux.HandleFunc("POST /v1/messages", func(w http.ResponseWriter, r *http.Request) {
		f.aiCalls++
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": extractionLine}},
		}))
	})

	f.mux.HandleFunc("POST /googleSolar/insights", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"maxArrayPanelsCount":20,"yearlyEnergyDcKwh":12000}`))
	})
	f.mux.HandleFunc("POST /googleSolar/dataLayers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"imageryDate":"2025-04-01","rgbUrl":"https://img.example/rgb.png"}`))
	})

	return f
}

func setup(t *testing.T, backends *fakeBackends) (*Service, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:services/analyzer")

	server := httptest.NewServer(backends.mux)

	ai, err := anthropic.NewClient(anthropic.ClientOptions{
		BaseUrl: server.URL,
		ApiKey:  "test-key",
	})
	require.NoError(t, err)
	solarClient, err := solar.NewClient(solar.ClientOptions{
		BaseUrl: server.URL,
		ApiKey:  "test-key",
	})
	require.NoError(t, err)
	supa := supabase.NewClient(supabase.ClientOptions{
		ProjectUrl: server.URL,
		ServiceKey: "service-key",
	})

	service := NewService(ai, solarClient, supa, Options{
		UtilityRate:  decimal.RequireFromString("0.14"),
		CostPerPanel: decimal.RequireFromString("1000"),
	})
	return service, func() {
		server.Close()
		cleanup()
	}
}

func TestAnalyzeCompany(t *testing.T) {
	backends := newFakeBackends(t)
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	profile, err := service.AnalyzeCompany(ctx, "https://acme.example")
	require.NoError(t, err)

	diff := cmp.Diff(CompanyProfile{
		Name:        "Acme Injury Law",
		Website:     "https://acme.example",
		Contact:     "intake@acme.example",
		Description: "A personal injury firm in El Paso.",
		Tags:        []string{"legal", "personal injury", "El Paso"},
		Takeaways:   []string{"no live chat", "slow intake form"},
		Niche:       "personal injury law",
	}, profile)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 1, backends.aiCalls)

	require.NotNil(t, backends.upsertedRow)
	require.Equal(t, "https://acme.example", backends.upsertedRow.Website)
	require.Equal(t, "legal, personal injury, El Paso", backends.upsertedRow.Tags)
	require.NotZero(t, backends.upsertedRow.AnalyzedAt)
}

func TestAnalyzeCompanyCached(t *testing.T) {
	backends := newFakeBackends(t)
	backends.cachedRows = []analysisRow{{
		Website:    "https://acme.example",
		Name:       "Acme Injury Law",
		Tags:       "legal, personal injury",
		AnalyzedAt: 1700000000,
	}}
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	profile, err := service.AnalyzeCompany(ctx, "https://acme.example")
	require.NoError(t, err)
	require.Equal(t, "Acme Injury Law", profile.Name)
	require.Equal(t, []string{"legal", "personal injury"}, profile.Tags)
	require.Equal(t, 0, backends.aiCalls)
}

func TestAnalyzeCompanyRequiresUrl(t *testing.T) {
	backends := newFakeBackends(t)
	service, cleanup := setup(t, backends)
	defer cleanup()

	_, err := service.AnalyzeCompany(context.Background(), "")
	require.Error(t, err)
}

func TestAnalyzeSolar(t *testing.T) {
	backends := newFakeBackends(t)
	service, cleanup := setup(t, backends)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	report, err := service.AnalyzeSolar(ctx, "123 Main St, El Paso, TX")
	require.NoError(t, err)
	require.Equal(t, 20, report.PanelCount)
	require.Equal(t, "1680", report.YearlySavings.String())
	// 20 panels * $1000 / $1680 per year
	require.Equal(t, "11.9", report.PaybackYears.String())
	require.Equal(t, "2025-04-01", report.ImageryDate)
}

func TestParseProfileRejectsFreeform(t *testing.T) {
	_, err := parseProfile("I could not find any information about this company.")
	require.Error(t, err)
}
