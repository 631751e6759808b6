package keychain

import (
	"context"
	"sunbridge-backend/lib/platforms/highlevel/session"
)

// CaptureSession runs the interactive CRM login and stores the
// resulting bundle under the given key.
func (s Service) CaptureSession(ctx context.Context, namespace, id string, login *session.Client, email, password string) (session.TokenBundle, error) {
	bundle, err := login.Login(ctx, email, password)
	if err != nil {
		return session.TokenBundle{}, err
	}
	err = s.Put(ctx, namespace, id, bundle)
	if err != nil {
		return session.TokenBundle{}, err
	}
	return bundle, nil
}
