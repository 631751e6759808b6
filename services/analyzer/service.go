package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sunbridge-backend/lib/platforms/anthropic"
	"sunbridge-backend/lib/platforms/solar"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/timezone"

	"github.com/shopspring/decimal"
)

const (
	analysisTable = "company_analysis"

	extractionSystem = "You are a highly accurate information extractor. You only answer in the exact format you are asked for, with no preamble and no commentary."

	extractionPrompt = `Visit and analyze the company website at %s. Respond with exactly one line in this format:

Company name: <name> | Website: <canonical url> | Contact: <email or phone if listed, otherwise "none"> | Description: <one sentence> | Tags: <comma separated keywords> | Takeaways: <comma separated sales-relevant observations> | Niche: <the market niche in a few words>`
)

// Service answers the two analysis questions the sales flow asks:
// who is this company, and what would solar save this address.
type Service struct {
	ai    *anthropic.Client
	solar *solar.Client
	supa  *supabase.Client
	opts  Options
}

type Options struct {
	// MaxSearches caps the model's web searches per analysis.
	MaxSearches int
	// UtilityRate is the $/kWh used for savings estimates.
	UtilityRate decimal.Decimal
	// CostPerPanel is the installed $/panel used for payback estimates.
	CostPerPanel decimal.Decimal
}

func NewService(ai *anthropic.Client, solarClient *solar.Client, supa *supabase.Client, opts Options) *Service {
	if opts.MaxSearches == 0 {
		opts.MaxSearches = 3
	}
	return &Service{ai: ai, solar: solarClient, supa: supa, opts: opts}
}

type analysisRow struct {
	Website     string `json:"website"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Takeaways   string `json:"takeaways"`
	Niche       string `json:"niche"`
	AnalyzedAt  int64  `json:"analyzed_at"`
}

func (r analysisRow) profile() CompanyProfile {
	return CompanyProfile{
		Name:        r.Name,
		Website:     r.Website,
		Contact:     r.Contact,
		Description: r.Description,
		Tags:        splitList(r.Tags),
		Takeaways:   splitList(r.Takeaways),
		Niche:       r.Niche,
	}
}

// AnalyzeCompany extracts a profile from the given website. Results are
// cached in the back-office database keyed by url, so repeat lookups
// do not burn model tokens.
func (s *Service) AnalyzeCompany(ctx context.Context, url string) (CompanyProfile, error) {
	if url == "" {
		return CompanyProfile{}, fmt.Errorf("a website url is required")
	}

	var cached []analysisRow
	err := s.supa.From(analysisTable).
		Select("*").
		Eq("website", url).
		Limit(1).
		Execute(ctx, &cached)
	if err != nil {
		// cache trouble should not block the analysis itself
		slog.WarnContext(ctx, "failed to read analysis cache", "url", url, "err", err)
	}
	if len(cached) > 0 {
		return cached[0].profile(), nil
	}

	text, err := s.ai.Complete(ctx, anthropic.CompleteRequest{
		System: extractionSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, url)},
		},
		Tools: []anthropic.Tool{anthropic.WebSearchTool(s.opts.MaxSearches)},
	})
	if err != nil {
		return CompanyProfile{}, fmt.Errorf("analyze %s: %w", url, err)
	}

	profile, err := parseProfile(text)
	if err != nil {
		return CompanyProfile{}, fmt.Errorf("analyze %s: %w", url, err)
	}
	if profile.Website == "" {
		profile.Website = url
	}

	err = s.supa.From(analysisTable).
		Upsert([]analysisRow{{
			Website:     url,
			Name:        profile.Name,
			Contact:     profile.Contact,
			Description: profile.Description,
			Tags:        strings.Join(profile.Tags, ", "),
			Takeaways:   strings.Join(profile.Takeaways, ", "),
			Niche:       profile.Niche,
			AnalyzedAt:  timezone.Now().Unix(),
		}}).
		Execute(ctx, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to write analysis cache", "url", url, "err", err)
	}

	return profile, nil
}

// SolarReport is the rooftop estimate quoted to a prospect.
type SolarReport struct {
	Address         string          `json:"address"`
	PanelCount      int             `json:"panelCount"`
	YearlyEnergyKwh float64         `json:"yearlyEnergyKwh"`
	YearlySavings   decimal.Decimal `json:"yearlySavings"`
	PaybackYears    decimal.Decimal `json:"paybackYears"`
	ImageryDate     string          `json:"imageryDate,omitempty"`
	RgbUrl          string          `json:"rgbUrl,omitempty"`
}

// AnalyzeSolar pulls building insights for the address and converts
// them into a savings estimate. Imagery is best-effort.
func (s *Service) AnalyzeSolar(ctx context.Context, address string) (SolarReport, error) {
	if address == "" {
		return SolarReport{}, fmt.Errorf("a street address is required")
	}

	insights, err := s.solar.GetBuildingInsights(ctx, solar.InsightsRequest{Address: address})
	if err != nil {
		return SolarReport{}, fmt.Errorf("building insights for %q: %w", address, err)
	}

	installedCost := s.opts.CostPerPanel.Mul(decimal.NewFromInt(int64(insights.MaxPanelCount)))
	estimate, err := solar.EstimateSavings(insights.YearlyEnergyKwh, s.opts.UtilityRate, installedCost)
	if err != nil {
		return SolarReport{}, err
	}

	report := SolarReport{
		Address:         address,
		PanelCount:      insights.MaxPanelCount,
		YearlyEnergyKwh: insights.YearlyEnergyKwh,
		YearlySavings:   estimate.YearlySavings,
		PaybackYears:    estimate.PaybackYears,
	}

	layers, err := s.solar.GetDataLayers(ctx, solar.DataLayersRequest{Address: address, RenderPanels: true})
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch imagery", "address", address, "err", err)
		return report, nil
	}
	report.ImageryDate = layers.ImageryDate
	report.RgbUrl = layers.RgbUrl

	return report, nil
}
