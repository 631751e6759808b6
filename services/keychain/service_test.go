package keychain

import (
	"context"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/highlevel/session"
	"sunbridge-backend/lib/testutil"
	"sunbridge-backend/lib/timezone"
	"sunbridge-backend/services/keychain/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls  int
	failed bool
}

func (r *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (highlevel.TokenResponse, error) {
	r.calls++
	if r.failed {
		return highlevel.TokenResponse{}, context.DeadlineExceeded
	}
	return highlevel.TokenResponse{
		AccessToken:  "refreshed-access",
		RefreshToken: "refreshed-refresh",
		ExpiresIn:    3600,
	}, nil
}

func setup(t testing.TB, refresher Refresher) (Service, func()) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/keychain",
		DbSchema: db.Schema,
	})

	s := NewService(result.DB, ServiceOptions{Refresher: refresher})
	return s, cleanup
}

func TestPutGetDelete(t *testing.T) {
	service, cleanup := setup(t, nil)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, ok, err := service.Get(ctx, "highlevel", "agency")
	require.NoError(t, err)
	require.False(t, ok)

	bundle := session.TokenBundle{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenId:      "token-id",
		ExpiresAt:    timezone.Now().Add(time.Hour),
	}
	require.NoError(t, service.Put(ctx, "highlevel", "agency", bundle))

	got, ok, err := service.Get(ctx, "highlevel", "agency")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "access", got.AccessToken)
	require.Equal(t, "token-id", got.TokenId)

	rows, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "agency", rows[0].ID)

	require.NoError(t, service.Delete(ctx, "highlevel", "agency"))
	_, ok, err = service.Get(ctx, "highlevel", "agency")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetExpired(t *testing.T) {
	service, cleanup := setup(t, nil)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, service.Put(ctx, "highlevel", "agency", session.TokenBundle{
		AccessToken: "stale",
		ExpiresAt:   timezone.Now().Add(-time.Minute),
	}))

	_, ok, err := service.Get(ctx, "highlevel", "agency")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRefreshAll(t *testing.T) {
	refresher := &fakeRefresher{}
	service, cleanup := setup(t, refresher)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// expiring within the refresh window
	require.NoError(t, service.Put(ctx, "highlevel", "almost-expired", session.TokenBundle{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		TokenId:      "tid",
		ExpiresAt:    timezone.Now().Add(time.Minute),
	}))
	// plenty of time left, must not be touched
	require.NoError(t, service.Put(ctx, "highlevel", "fresh", session.TokenBundle{
		AccessToken:  "fresh-access",
		RefreshToken: "fresh-refresh",
		ExpiresAt:    timezone.Now().Add(time.Hour),
	}))
	// no refresh token, must be skipped rather than refreshed
	require.NoError(t, service.Put(ctx, "highlevel", "unrefreshable", session.TokenBundle{
		AccessToken: "static-access",
		ExpiresAt:   timezone.Now().Add(time.Minute),
	}))

	require.NoError(t, service.RefreshAll(ctx))
	require.Equal(t, 1, refresher.calls)

	got, ok, err := service.Get(ctx, "highlevel", "almost-expired")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "refreshed-access", got.AccessToken)
	require.Equal(t, "refreshed-refresh", got.RefreshToken)
	require.Equal(t, "tid", got.TokenId)

	got, ok, err = service.Get(ctx, "highlevel", "fresh")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh-access", got.AccessToken)

	got, ok, err = service.Get(ctx, "highlevel", "unrefreshable")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "static-access", got.AccessToken)
}

func TestRefreshFailureKeepsRow(t *testing.T) {
	refresher := &fakeRefresher{failed: true}
	service, cleanup := setup(t, refresher)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, service.Put(ctx, "highlevel", "agency", session.TokenBundle{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    timezone.Now().Add(time.Minute),
	}))

	require.NoError(t, service.RefreshAll(ctx))
	require.Equal(t, 1, refresher.calls)

	got, ok, err := service.Get(ctx, "highlevel", "agency")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "old-access", got.AccessToken)
}

func TestPurgeKeepsRefreshableRows(t *testing.T) {
	service, cleanup := setup(t, nil)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, service.Put(ctx, "highlevel", "expired-refreshable", session.TokenBundle{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    timezone.Now().Add(-time.Hour),
	}))
	require.NoError(t, service.Put(ctx, "highlevel", "expired-static", session.TokenBundle{
		AccessToken: "b",
		ExpiresAt:   timezone.Now().Add(-time.Hour),
	}))

	require.NoError(t, service.qry.DeleteTokensBefore(ctx, timezone.Now().Unix()))

	rows, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "expired-refreshable", rows[0].ID)
}
