package commands

import (
	"log"
	"os"
	"strings"
	"sunbridge-backend/lib/platforms/highlevel"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var contactLocation string
var contactEmail string
var contactPhone string
var contactTags string

func init() {
	contactsListCmd.Flags().StringVar(&contactLocation, "location", "", "Sub-account to list contacts from.")
	contactsCreateCmd.Flags().StringVar(&contactLocation, "location", "", "Sub-account to create the contact in.")
	contactsCreateCmd.Flags().StringVar(&contactEmail, "email", "", "Contact email.")
	contactsCreateCmd.Flags().StringVar(&contactPhone, "phone", "", "Contact phone.")
	contactsCreateCmd.Flags().StringVar(&contactTags, "tags", "", "Comma separated tags.")
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsCreateCmd)
	rootCmd.AddCommand(contactsCmd)
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List and create CRM contacts.",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the contacts in a sub-account.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, secrets, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		crm := crmClient(cfg, secrets)

		contacts, err := crm.GetContacts(cmd.Context(), contactLocation)
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Email", "Phone", "Source"})
		for _, contact := range contacts {
			t.AppendRow(table.Row{
				contact.Id, contact.Name, contact.Email, contact.Phone, contact.Source,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var contactsCreateCmd = &cobra.Command{
	Use:   "create <first name> <last name>",
	Short: "Creates a contact in a sub-account.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, secrets, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		crm := crmClient(cfg, secrets)

		var tags []string
		if contactTags != "" {
			for _, tag := range strings.Split(contactTags, ",") {
				tags = append(tags, strings.TrimSpace(tag))
			}
		}

		contact, err := crm.CreateContact(cmd.Context(), highlevel.CreateContactRequest{
			FirstName:  args[0],
			LastName:   args[1],
			Email:      contactEmail,
			Phone:      contactPhone,
			LocationId: contactLocation,
			Tags:       tags,
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("created contact %s", contact.Id)
	},
}
