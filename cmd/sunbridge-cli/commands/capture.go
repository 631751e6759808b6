package commands

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sunbridge-backend/lib/platforms/highlevel/session"
	"sunbridge-backend/services/keychain"
	keychaindb "sunbridge-backend/services/keychain/db"
	"time"

	"github.com/spf13/cobra"
)

var captureNamespace string
var captureId string

func init() {
	captureCmd.Flags().StringVar(&captureNamespace, "namespace", "highlevel", "Keychain namespace to store the token under.")
	captureCmd.Flags().StringVar(&captureId, "id", "agency", "Keychain id to store the token under.")
	tokensCmd.AddCommand(captureCmd)
}

var captureCmd = &cobra.Command{
	Use:   "capture <email>",
	Short: "Logs into the CRM interactively and stores the captured token bundle.",
	Args:  cobra.ExactArgs(1),
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

		stdin := bufio.NewReader(os.Stdin)
		fmt.Print("password: ")
		password, err := stdin.ReadString('\n')
		if err != nil {
			log.Fatal(err)
		}

		login, err := session.NewClient(session.ClientOptions{
			BaseUrl: cfg.Highlevel.AppUrl,
			OTP: session.OTPFunc(func(ctx context.Context) (string, error) {
				fmt.Print("security code: ")
				code, err := stdin.ReadString('\n')
				if err != nil {
					return "", err
				}
				return strings.TrimSpace(code), nil
			}),
		})
		if err != nil {
			log.Fatal(err)
		}

		bundle, err := service.CaptureSession(
			cmd.Context(), captureNamespace, captureId,
			login, args[0], strings.TrimSpace(password))
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("captured token for %s/%s, expires %s",
			captureNamespace, captureId, bundle.ExpiresAt.Format(time.ANSIC))
	},
}
