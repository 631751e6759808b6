package keychain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"sunbridge-backend/lib/timezone"
	"sunbridge-backend/services/keychain/db"
	"time"

	"github.com/jordan-wright/email"
)

// Alerter emails the operations inbox when a token can no longer be
// refreshed, so a human re-captures the session before workflows start
// failing.
type Alerter struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

func (a *Alerter) send(namespace, id string, cause error) error {
	e := email.NewEmail()
	e.From = a.From
	e.To = a.To
	e.Subject = fmt.Sprintf("token refresh failing: %s/%s", namespace, id)
	e.Text = []byte(fmt.Sprintf(
		"The stored token for %s/%s could not be refreshed:\n\n%v\n\nRe-capture the session before it expires.",
		namespace, id, cause,
	))
	addr := fmt.Sprintf("%s:%d", a.Host, a.Port)
	return e.Send(addr, smtp.PlainAuth("", a.Username, a.Password, a.Host))
}

// alertRefreshFailure sends at most one email per key per day.
func (s Service) alertRefreshFailure(ctx context.Context, row db.Token, cause error) {
	if s.alerter == nil {
		return
	}

	alert, err := s.qry.GetRefreshAlert(ctx, db.GetRefreshAlertParams{
		Namespace: row.Namespace,
		ID:        row.ID,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "failed to look up alert record", "err", err)
		return
	}
	if err == nil && timezone.Now().Sub(time.Unix(alert.AlertedAt, 0)) < time.Hour*24 {
		return
	}

	err = s.alerter.send(row.Namespace, row.ID, cause)
	if err != nil {
		slog.WarnContext(ctx, "failed to send refresh alert", "err", err)
		return
	}

	err = s.qry.UpsertRefreshAlert(ctx, db.UpsertRefreshAlertParams{
		Namespace: row.Namespace,
		ID:        row.ID,
		AlertedAt: timezone.Now().Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record alert time", "err", err)
	}
}
