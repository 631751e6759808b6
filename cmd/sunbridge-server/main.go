package main

import (
	"flag"
	"sunbridge-backend/lib/configutil"
	"sunbridge-backend/lib/platforms/anthropic"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/platforms/solar"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/lib/serviceutil"
	"sunbridge-backend/services/analyzer"
	"sunbridge-backend/services/keychain"
	keychaindb "sunbridge-backend/services/keychain/db"
	"sunbridge-backend/services/provisioning"

	"github.com/shopspring/decimal"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	secrets, err := configutil.FromEnv[Secrets]()
	if err != nil {
		serviceutil.Fatal("read secrets", err)
	}

	crm := highlevel.NewClient(highlevel.ClientOptions{
		BaseUrl:     cfg.Highlevel.BaseUrl,
		AccessToken: secrets.HighlevelAccessToken,
		LocationId:  cfg.Highlevel.LocationId,
	})
	supa := supabase.NewClient(supabase.ClientOptions{
		ProjectUrl: cfg.Supabase.ProjectUrl,
		ServiceKey: secrets.SupabaseServiceKey,
	})
	flows, err := n8n.NewClient(n8n.ClientOptions{
		WebhookUrl: cfg.N8n.WebhookUrl,
	})
	if err != nil {
		serviceutil.Fatal("init workflow client", err)
	}
	ai, err := anthropic.NewClient(anthropic.ClientOptions{
		BaseUrl: cfg.Anthropic.BaseUrl,
		ApiKey:  secrets.AnthropicApiKey,
	})
	if err != nil {
		serviceutil.Fatal("init anthropic client", err)
	}
	solarClient, err := solar.NewClient(solar.ClientOptions{
		BaseUrl: cfg.Solar.BaseUrl,
		ApiKey:  secrets.SolarApiKey,
	})
	if err != nil {
		serviceutil.Fatal("init solar client", err)
	}

	database, err := cfg.Keychain.Database.OpenDB(keychaindb.Schema)
	if err != nil {
		serviceutil.Fatal("init keychain database", err)
	}
	var alerter *keychain.Alerter
	if cfg.Smtp.Host != "" && len(cfg.Smtp.AlertsTo) > 0 {
		alerter = &keychain.Alerter{
			Host:     cfg.Smtp.Host,
			Port:     cfg.Smtp.Port,
			Username: secrets.SmtpUsername,
			Password: secrets.SmtpPassword,
			From:     cfg.Smtp.From,
			To:       cfg.Smtp.AlertsTo,
		}
	}
	keychainService := keychain.NewService(database, keychain.ServiceOptions{
		Refresher: keychain.OAuthRefresher{
			Client:       crm,
			ClientId:     secrets.HighlevelClientId,
			ClientSecret: secrets.HighlevelClientSecret,
		},
		Alerter: alerter,
	})
	keychainService.StartDaemons(ctx)

	var mailer *provisioning.InviteMailer
	if cfg.Smtp.Host != "" {
		mailer = &provisioning.InviteMailer{
			Host:     cfg.Smtp.Host,
			Port:     cfg.Smtp.Port,
			Username: secrets.SmtpUsername,
			Password: secrets.SmtpPassword,
			From:     cfg.Smtp.From,
			LoginUrl: cfg.Smtp.LoginUrl,
		}
	}
	provisioningService := provisioning.NewService(crm, supa, flows, provisioning.Options{
		CompanyId:      cfg.Highlevel.CompanyId,
		HomeLocationId: cfg.Highlevel.HomeLocationId,
		Mailer:         mailer,
	})

	utilityRate, err := decimal.NewFromString(cfg.Analyzer.UtilityRate)
	if err != nil {
		serviceutil.Fatal("parse analyzer.utility_rate", err)
	}
	costPerPanel, err := decimal.NewFromString(cfg.Analyzer.CostPerPanel)
	if err != nil {
		serviceutil.Fatal("parse analyzer.cost_per_panel", err)
	}
	analyzerService := analyzer.NewService(ai, solarClient, supa, analyzer.Options{
		MaxSearches:  cfg.Analyzer.MaxSearches,
		UtilityRate:  utilityRate,
		CostPerPanel: costPerPanel,
	})

	server := NewServer(ServerOptions{
		Crm:          crm,
		Supabase:     supa,
		Keychain:     keychainService,
		Provisioning: provisioningService,
		Analyzer:     analyzerService,
		LoginUrl:     cfg.Highlevel.AppUrl,
	})

	go serviceutil.StartHttpServer(cfg.Port, server.Handler())
	<-ctx.Done()
}
