package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form action="/oauth/login" method="post">
<input type="hidden" name="_csrf" value="csrf-123"/>
<input name="email"/><input name="password"/>
</form>
</body></html>`

func accessToken(t *testing.T, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte("test"))
	require.NoError(t, err)
	return signed
}

type fakeCRM struct {
	t        *testing.T
	exp      time.Time
	with2fa  bool
	password string
	code     string
}

func (f *fakeCRM) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/oauth/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(f.t, "csrf-123", r.Header.Get("x-csrf-token"))

		var req loginRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != f.password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if f.with2fa {
			json.NewEncoder(w).Encode(loginResponse{
				Challenge:   "otp_email",
				ChallengeId: "challenge-1",
			})
			return
		}
		json.NewEncoder(w).Encode(loginResponse{
			AccessToken:  accessToken(f.t, f.exp),
			RefreshToken: "refresh-1",
			TokenId:      "firebase-1",
		})
	})
	mux.HandleFunc("/oauth/login/verify", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(f.t, "challenge-1", req.ChallengeId)
		if req.Code != f.code {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loginResponse{
			AccessToken:  accessToken(f.t, f.exp),
			RefreshToken: "refresh-2",
			TokenId:      "firebase-2",
		})
	})
	return mux
}

func newTestClient(t *testing.T, crm *fakeCRM, otp OTPProvider) *Client {
	server := httptest.NewServer(crm.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, OTP: otp})
	require.NoError(t, err)
	return client
}

func TestLoginWithout2FA(t *testing.T) {
	exp := time.Now().Add(time.Hour * 24).Truncate(time.Second)
	crm := &fakeCRM{t: t, exp: exp, password: "hunter2"}
	client := newTestClient(t, crm, nil)

	bundle, err := client.Login(context.Background(), "ops@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, bundle.AccessToken)
	require.Equal(t, "refresh-1", bundle.RefreshToken)
	require.Equal(t, "firebase-1", bundle.TokenId)
	require.Equal(t, exp.Unix(), bundle.ExpiresAt.Unix())
}

func TestLoginWith2FA(t *testing.T) {
	crm := &fakeCRM{
		t:        t,
		exp:      time.Now().Add(time.Hour),
		with2fa:  true,
		password: "hunter2",
		code:     "123456",
	}
	client := newTestClient(t, crm, StaticOTP("123456"))

	bundle, err := client.Login(context.Background(), "ops@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "refresh-2", bundle.RefreshToken)
	require.Equal(t, "firebase-2", bundle.TokenId)
}

func TestLoginBadPassword(t *testing.T) {
	crm := &fakeCRM{t: t, exp: time.Now(), password: "hunter2"}
	client := newTestClient(t, crm, nil)

	_, err := client.Login(context.Background(), "ops@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBadOTP(t *testing.T) {
	crm := &fakeCRM{
		t:        t,
		exp:      time.Now(),
		with2fa:  true,
		password: "hunter2",
		code:     "123456",
	}
	client := newTestClient(t, crm, StaticOTP("000000"))

	_, err := client.Login(context.Background(), "ops@example.com", "hunter2")
	require.ErrorIs(t, err, ErrOTPRejected)
}

func TestLoginMissingOTPProvider(t *testing.T) {
	crm := &fakeCRM{
		t:        t,
		exp:      time.Now(),
		with2fa:  true,
		password: "hunter2",
	}
	client := newTestClient(t, crm, nil)

	_, err := client.Login(context.Background(), "ops@example.com", "hunter2")
	require.ErrorIs(t, err, ErrNoOTPProvider)
}

func TestExtractCode(t *testing.T) {
	body := `Your login security code: 482913. It expires in 10 minutes.`
	code, err := ExtractCode(body)
	require.NoError(t, err)
	require.Equal(t, "482913", code)

	_, err = ExtractCode("no code in here")
	require.Error(t, err)
}
