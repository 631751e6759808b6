package commands

import (
	"context"
	"fmt"
	"os"
	"sunbridge-backend/lib/configutil"
	"sunbridge-backend/lib/platforms/anthropic"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/platforms/solar"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/sqliteutil"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sunbridge-cli",
	Short: "sunbridge-cli pokes the CRM, analysis, and token plumbing from the command line.",
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the config file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type HighlevelConfig struct {
	BaseUrl        string `json:"base_url"`
	AppUrl         string `json:"app_url"`
	LocationId     string `json:"location_id"`
	CompanyId      string `json:"company_id"`
	HomeLocationId string `json:"home_location_id"`
}

type Config struct {
	Keychain struct {
		Database sqliteutil.LibsqlConfig `json:"database"`
	} `json:"keychain"`
	Highlevel HighlevelConfig `json:"highlevel"`
	Supabase  struct {
		ProjectUrl string `json:"project_url"`
	} `json:"supabase"`
	N8n struct {
		WebhookUrl string `json:"webhook_url"`
	} `json:"n8n"`
	Anthropic struct {
		BaseUrl string `json:"base_url"`
	} `json:"anthropic"`
	Solar struct {
		BaseUrl string `json:"base_url"`
	} `json:"solar"`
	Analyzer struct {
		MaxSearches  int    `json:"max_searches"`
		UtilityRate  string `json:"utility_rate"`
		CostPerPanel string `json:"cost_per_panel"`
	} `json:"analyzer"`
}

type Secrets struct {
	HighlevelAccessToken  string `env:"HIGHLEVEL_ACCESS_TOKEN"`
	HighlevelClientId     string `env:"HIGHLEVEL_CLIENT_ID"`
	HighlevelClientSecret string `env:"HIGHLEVEL_CLIENT_SECRET"`
	SupabaseServiceKey    string `env:"SUPABASE_SERVICE_KEY"`
	AnthropicApiKey       string `env:"ANTHROPIC_API_KEY"`
	SolarApiKey           string `env:"SOLAR_API_KEY"`
}

func loadConfig() (Config, Secrets, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		return Config{}, Secrets{}, fmt.Errorf("read config: %w", err)
	}
	secrets, err := configutil.FromEnv[Secrets]()
	if err != nil {
		return Config{}, Secrets{}, fmt.Errorf("read secrets: %w", err)
	}
	return cfg, secrets, nil
}

func crmClient(cfg Config, secrets Secrets) *highlevel.Client {
	return highlevel.NewClient(highlevel.ClientOptions{
		BaseUrl:     cfg.Highlevel.BaseUrl,
		AccessToken: secrets.HighlevelAccessToken,
		LocationId:  cfg.Highlevel.LocationId,
	})
}

func supabaseClient(cfg Config, secrets Secrets) *supabase.Client {
	return supabase.NewClient(supabase.ClientOptions{
		ProjectUrl: cfg.Supabase.ProjectUrl,
		ServiceKey: secrets.SupabaseServiceKey,
	})
}

func n8nClient(cfg Config) (*n8n.Client, error) {
	return n8n.NewClient(n8n.ClientOptions{WebhookUrl: cfg.N8n.WebhookUrl})
}

func anthropicClient(cfg Config, secrets Secrets) (*anthropic.Client, error) {
	return anthropic.NewClient(anthropic.ClientOptions{
		BaseUrl: cfg.Anthropic.BaseUrl,
		ApiKey:  secrets.AnthropicApiKey,
	})
}

func solarClient(cfg Config, secrets Secrets) (*solar.Client, error) {
	return solar.NewClient(solar.ClientOptions{
		BaseUrl: cfg.Solar.BaseUrl,
		ApiKey:  secrets.SolarApiKey,
	})
}
