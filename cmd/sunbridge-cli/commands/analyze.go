package commands

import (
	"log"
	"os"
	"strings"
	"sunbridge-backend/services/analyzer"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	analyzeCmd.AddCommand(analyzeCompanyCmd)
	analyzeCmd.AddCommand(analyzeSolarCmd)
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run company or solar analysis for a prospect.",
}

func analyzerService() *analyzer.Service {
	cfg, secrets, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	ai, err := anthropicClient(cfg, secrets)
	if err != nil {
		log.Fatal(err)
	}
	solarApi, err := solarClient(cfg, secrets)
	if err != nil {
		log.Fatal(err)
	}
	utilityRate, err := decimal.NewFromString(cfg.Analyzer.UtilityRate)
	if err != nil {
		log.Fatal(err)
	}
	costPerPanel, err := decimal.NewFromString(cfg.Analyzer.CostPerPanel)
	if err != nil {
		log.Fatal(err)
	}
	return analyzer.NewService(ai, solarApi, supabaseClient(cfg, secrets), analyzer.Options{
		MaxSearches:  cfg.Analyzer.MaxSearches,
		UtilityRate:  utilityRate,
		CostPerPanel: costPerPanel,
	})
}

var analyzeCompanyCmd = &cobra.Command{
	Use:   "company <url>",
	Short: "Extracts a structured company profile from a website.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profile, err := analyzerService().AnalyzeCompany(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRow(table.Row{"Name", profile.Name})
		t.AppendRow(table.Row{"Website", profile.Website})
		t.AppendRow(table.Row{"Contact", profile.Contact})
		t.AppendRow(table.Row{"Description", profile.Description})
		t.AppendRow(table.Row{"Tags", strings.Join(profile.Tags, ", ")})
		t.AppendRow(table.Row{"Takeaways", strings.Join(profile.Takeaways, ", ")})
		t.AppendRow(table.Row{"Niche", profile.Niche})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var analyzeSolarCmd = &cobra.Command{
	Use:   "solar <address>",
	Short: "Estimates rooftop solar production and savings for an address.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report, err := analyzerService().AnalyzeSolar(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRow(table.Row{"Address", report.Address})
		t.AppendRow(table.Row{"Panels", report.PanelCount})
		t.AppendRow(table.Row{"Yearly kWh", report.YearlyEnergyKwh})
		t.AppendRow(table.Row{"Yearly savings", "$" + report.YearlySavings.String()})
		t.AppendRow(table.Row{"Payback years", report.PaybackYears.String()})
		if report.ImageryDate != "" {
			t.AppendRow(table.Row{"Imagery date", report.ImageryDate})
			t.AppendRow(table.Row{"Imagery", report.RgbUrl})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
