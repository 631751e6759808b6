package keychain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/highlevel/session"
	"sunbridge-backend/lib/timezone"
	"sunbridge-backend/services/keychain/db"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Refresher exchanges a refresh token for a fresh token bundle.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (highlevel.TokenResponse, error)
}

// OAuthRefresher refreshes tokens against the CRM's oauth endpoint.
type OAuthRefresher struct {
	Client       *highlevel.Client
	ClientId     string
	ClientSecret string
}

func (r OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (highlevel.TokenResponse, error) {
	return r.Client.RefreshAccessToken(ctx, highlevel.RefreshTokenRequest{
		ClientId:     r.ClientId,
		ClientSecret: r.ClientSecret,
		RefreshToken: refreshToken,
	})
}

// Service stores CRM token bundles and keeps them alive. Tokens that
// carry a refresh token get refreshed shortly before expiry; tokens
// that cannot be refreshed are purged once they expire.
type Service struct {
	db        *sql.DB
	qry       *db.Queries
	refresher Refresher
	alerter   *Alerter
}

type ServiceOptions struct {
	Refresher Refresher
	// Alerter may be nil, in which case refresh failures are only
	// logged.
	Alerter *Alerter
}

func NewService(database *sql.DB, opts ServiceOptions) Service {
	return Service{
		db:        database,
		qry:       db.New(database),
		refresher: opts.Refresher,
		alerter:   opts.Alerter,
	}
}

// StartDaemons launches the background refresh and purge loops. They
// stop when ctx is cancelled.
func (s Service) StartDaemons(ctx context.Context) {
	go s.refreshDaemon(ctx)
	go s.purgeDaemon(ctx)
}

func (s Service) Put(ctx context.Context, namespace, id string, bundle session.TokenBundle) error {
	return s.qry.CreateToken(ctx, db.CreateTokenParams{
		Namespace:    namespace,
		ID:           id,
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		TokenID:      bundle.TokenId,
		ExpiresAt:    bundle.ExpiresAt.Unix(),
		UpdatedAt:    timezone.Now().Unix(),
	})
}

// Get returns the stored bundle for the key. The second return is
// false when no live token exists; expired rows are treated as absent.
func (s Service) Get(ctx context.Context, namespace, id string) (session.TokenBundle, bool, error) {
	row, err := s.qry.GetToken(ctx, db.GetTokenParams{Namespace: namespace, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return session.TokenBundle{}, false, nil
	}
	if err != nil {
		return session.TokenBundle{}, false, err
	}
	if row.ExpiresAt < timezone.Now().Unix() {
		return session.TokenBundle{}, false, nil
	}
	return session.TokenBundle{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenId:      row.TokenID,
		ExpiresAt:    time.Unix(row.ExpiresAt, 0),
	}, true, nil
}

func (s Service) Delete(ctx context.Context, namespace, id string) error {
	return s.qry.DeleteToken(ctx, db.DeleteTokenParams{Namespace: namespace, ID: id})
}

func (s Service) List(ctx context.Context) ([]db.Token, error) {
	return s.qry.ListTokens(ctx)
}

func (s Service) refreshToken(ctx context.Context, row db.Token) error {
	if row.RefreshToken == "" {
		return fmt.Errorf("token is not refreshable")
	}
	if s.refresher == nil {
		return fmt.Errorf("no refresher is configured")
	}

	res, err := s.refresher.Refresh(ctx, row.RefreshToken)
	if err != nil {
		return err
	}

	refreshToken := res.RefreshToken
	if refreshToken == "" {
		refreshToken = row.RefreshToken
	}
	expiresAt := timezone.Now().Add(time.Duration(res.ExpiresIn) * time.Second)

	slog.DebugContext(ctx, "refreshed token",
		slog.Group("key", "namespace", row.Namespace, "id", row.ID),
		"expires_at", expiresAt,
	)

	return s.qry.CreateToken(ctx, db.CreateTokenParams{
		Namespace:    row.Namespace,
		ID:           row.ID,
		AccessToken:  res.AccessToken,
		RefreshToken: refreshToken,
		TokenID:      row.TokenID,
		ExpiresAt:    expiresAt.Unix(),
		UpdatedAt:    timezone.Now().Unix(),
	})
}

// RefreshAll refreshes every token expiring within the next 5 minutes.
func (s Service) RefreshAll(ctx context.Context) error {
	cutoff := timezone.Now().Add(5 * time.Minute)
	almostExpired, err := s.qry.GetTokensBefore(ctx, cutoff.Unix())
	if err != nil {
		return err
	}

	wg := sync.WaitGroup{}
	for _, row := range almostExpired {
		if row.RefreshToken == "" {
			continue
		}
		wg.Add(1)
		go func(row db.Token) {
			defer wg.Done()
			err := s.refreshToken(ctx, row)
			if err != nil {
				slog.WarnContext(
					ctx, "failed to refresh token",
					slog.Group("key",
						"namespace", row.Namespace,
						"id", row.ID,
					),
					"err", err,
				)
				s.alertRefreshFailure(ctx, row, err)
			}
		}(row)
	}
	wg.Wait()

	return nil
}

func (s Service) refreshDaemon(ctx context.Context) {
	slog.InfoContext(ctx, "start daemon", "task", "refresh tokens every 3 minutes")

	ticker := time.NewTicker(time.Minute * 3)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := s.RefreshAll(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to refresh tokens", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s Service) purgeDaemon(ctx context.Context) {
	slog.InfoContext(ctx, "start daemon", "task", "purge expired unrefreshable tokens every 30 minutes")

	ticker := time.NewTicker(time.Minute * 30)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := s.qry.DeleteTokensBefore(ctx, timezone.Now().Unix())
			if err != nil {
				slog.WarnContext(ctx, "failed to purge expired tokens", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
