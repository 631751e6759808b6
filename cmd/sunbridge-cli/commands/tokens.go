package commands

import (
	"log"
	"os"
	"sunbridge-backend/lib/jwtutil"
	"sunbridge-backend/lib/timezone"
	"sunbridge-backend/services/keychain"
	keychaindb "sunbridge-backend/services/keychain/db"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensCheckCmd)
	tokensCmd.AddCommand(tokensRefreshCmd)
	rootCmd.AddCommand(tokensCmd)
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Inspect and refresh the stored CRM tokens.",
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every stored token key and its expiry.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		database, err := cfg.Keychain.Database.OpenDB(keychaindb.Schema)
		if err != nil {
			log.Fatal(err)
		}
		service := keychain.NewService(database, keychain.ServiceOptions{})

		rows, err := service.List(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Namespace", "Id", "Refreshable", "Expires", "Updated"})
		now := timezone.Now()
		for _, row := range rows {
			expiresAt := time.Unix(row.ExpiresAt, 0)
			expires := expiresAt.Format(time.ANSIC)
			if expiresAt.Before(now) {
				expires = "EXPIRED " + expires
			}
			t.AppendRow(table.Row{
				row.Namespace,
				row.ID,
				row.RefreshToken != "",
				expires,
				time.Unix(row.UpdatedAt, 0).Format(time.ANSIC),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var tokensCheckCmd = &cobra.Command{
	Use:   "check <jwt>",
	Short: "Decodes a bearer token and prints its lifetime.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lifetime, err := jwtutil.Expiry(args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRow(table.Row{"Issued", lifetime.IssuedAt.Format(time.ANSIC)})
		t.AppendRow(table.Row{"Expires", lifetime.ExpiresAt.Format(time.ANSIC)})
		t.AppendRow(table.Row{"Expired", lifetime.Expired(timezone.Now())})
		t.AppendRow(table.Row{"Remaining", lifetime.Remaining(timezone.Now()).Round(time.Second)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var tokensRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refreshes every stored token that is close to expiring.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, secrets, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		database, err := cfg.Keychain.Database.OpenDB(keychaindb.Schema)
		if err != nil {
			log.Fatal(err)
		}
		service := keychain.NewService(database, keychain.ServiceOptions{
			Refresher: keychain.OAuthRefresher{
				Client:       crmClient(cfg, secrets),
				ClientId:     secrets.HighlevelClientId,
				ClientSecret: secrets.HighlevelClientSecret,
			},
		})

		err = service.RefreshAll(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}
	},
}
