package commands

import (
	"log"
	"sunbridge-backend/services/provisioning"

	"github.com/spf13/cobra"
)

var provisionReq provisioning.ProvisionRequest

func init() {
	provisionCmd.Flags().StringVar(&provisionReq.FirmUserId, "firm-user-id", "", "Back-office id of the firm.")
	provisionCmd.Flags().StringVar(&provisionReq.FirmName, "firm", "", "Firm name.")
	provisionCmd.Flags().StringVar(&provisionReq.FirstName, "first", "", "Admin first name.")
	provisionCmd.Flags().StringVar(&provisionReq.LastName, "last", "", "Admin last name.")
	provisionCmd.Flags().StringVar(&provisionReq.Email, "email", "", "Admin email.")
	provisionCmd.Flags().StringVar(&provisionReq.Phone, "phone", "", "Firm phone.")
	provisionCmd.Flags().StringVar(&provisionReq.Website, "website", "", "Firm website.")
	provisionCmd.MarkFlagRequired("firm-user-id")
	provisionCmd.MarkFlagRequired("firm")
	provisionCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(provisionCmd)
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provisions a CRM sub-account, admin user, and workflow registration for a firm.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, secrets, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		flows, err := n8nClient(cfg)
		if err != nil {
			log.Fatal(err)
		}
		service := provisioning.NewService(
			crmClient(cfg, secrets),
			supabaseClient(cfg, secrets),
			flows,
			provisioning.Options{
				CompanyId:      cfg.Highlevel.CompanyId,
				HomeLocationId: cfg.Highlevel.HomeLocationId,
			},
		)

		result, err := service.Provision(cmd.Context(), provisionReq)
		if err != nil {
			if result.LocationId != "" {
				log.Printf("partial result: location=%s user=%s", result.LocationId, result.UserId)
			}
			log.Fatal(err)
		}
		log.Printf("provisioned location=%s user=%s temp password=%s",
			result.LocationId, result.UserId, result.TempPassword)
	},
}
