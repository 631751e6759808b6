package provisioning

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// InviteMailer sends the first-login email to a freshly provisioned
// firm admin.
type InviteMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	LoginUrl string
}

func (m *InviteMailer) SendInvite(to, firstName, firmName, tempPassword string) error {
	e := email.NewEmail()
	e.From = m.From
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your %s workspace is ready", firmName)
	e.Text = []byte(fmt.Sprintf(
		"Hi %s,\n\nYour workspace for %s has been set up.\n\nSign in at %s with this email address and the temporary password below, then change it right away.\n\nTemporary password: %s\n",
		firstName, firmName, m.LoginUrl, tempPassword,
	))
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return e.Send(addr, smtp.PlainAuth("", m.Username, m.Password, m.Host))
}
