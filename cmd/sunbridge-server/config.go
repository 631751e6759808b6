package main

import (
	"sunbridge-backend/lib/sqliteutil"
)

type KeychainConfig struct {
	// Database is a local sqlite file or a remote libsql url.
	Database sqliteutil.LibsqlConfig `json:"database"`
}

type HighlevelConfig struct {
	BaseUrl string `json:"base_url"`
	// AppUrl is the interactive login host used for session capture.
	AppUrl     string `json:"app_url"`
	LocationId string `json:"location_id"`
	CompanyId  string `json:"company_id"`
	// HomeLocationId is scanned for duplicate users before
	// provisioning.
	HomeLocationId string `json:"home_location_id"`
}

type SupabaseConfig struct {
	ProjectUrl string `json:"project_url"`
}

type N8nConfig struct {
	WebhookUrl string `json:"webhook_url"`
}

type AnthropicConfig struct {
	BaseUrl string `json:"base_url"`
}

type SolarConfig struct {
	BaseUrl string `json:"base_url"`
}

type AnalyzerConfig struct {
	MaxSearches  int    `json:"max_searches"`
	UtilityRate  string `json:"utility_rate"`
	CostPerPanel string `json:"cost_per_panel"`
}

type SmtpConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	From     string   `json:"from"`
	AlertsTo []string `json:"alerts_to"`
	LoginUrl string   `json:"login_url"`
}

type Config struct {
	Port      int             `json:"port"`
	Keychain  KeychainConfig  `json:"keychain"`
	Highlevel HighlevelConfig `json:"highlevel"`
	Supabase  SupabaseConfig  `json:"supabase"`
	N8n       N8nConfig       `json:"n8n"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Solar     SolarConfig     `json:"solar"`
	Analyzer  AnalyzerConfig  `json:"analyzer"`
	Smtp      SmtpConfig      `json:"smtp"`
}

// Secrets come from the environment (or a .env file), never from
// config.json5, so config files can be committed.
type Secrets struct {
	HighlevelAccessToken  string `env:"HIGHLEVEL_ACCESS_TOKEN"`
	HighlevelClientId     string `env:"HIGHLEVEL_CLIENT_ID"`
	HighlevelClientSecret string `env:"HIGHLEVEL_CLIENT_SECRET"`
	SupabaseServiceKey    string `env:"SUPABASE_SERVICE_KEY,required"`
	AnthropicApiKey       string `env:"ANTHROPIC_API_KEY"`
	SolarApiKey           string `env:"SOLAR_API_KEY"`
	SmtpUsername          string `env:"SMTP_USERNAME"`
	SmtpPassword          string `env:"SMTP_PASSWORD"`
}
