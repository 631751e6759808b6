package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"sunbridge-backend/lib/jwtutil"
	"sunbridge-backend/lib/restyutil"
	"sunbridge-backend/lib/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/publicsuffix"
)

var tracer = otel.Tracer("platforms/highlevel/session")

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrOTPRejected        = errors.New("security code was rejected")
	ErrNoOTPProvider      = errors.New("login requires a security code but no otp provider was configured")
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// TokenBundle is what the login flow exists to produce: the bearer and
// token-id headers the CRM's private APIs expect, plus the refresh
// token needed to keep them alive.
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	TokenId      string
	ExpiresAt    time.Time
}

// Client drives the CRM's interactive login without a browser. The
// original flow used a webdriver against the login page; everything the
// page does reduces to three requests once the csrf token is scraped
// out of the HTML.
type Client struct {
	http *resty.Client
	otp  OTPProvider
}

type ClientOptions struct {
	// BaseUrl of the CRM's app host (not the public API host).
	BaseUrl string
	// OTP supplies the emailed security code when the account has 2FA
	// enabled. May be nil for accounts without 2FA.
	OTP OTPProvider
}

func NewClient(opts ClientOptions) (*Client, error) {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "platforms/highlevel/session")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{http: client, otp: opts.OTP}, nil
}

func (c *Client) fetchCsrfToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "fetchCsrfToken")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page html")
		return "", err
	}

	csrf := doc.Find("input[name=_csrf]").AttrOr("value", "")
	if csrf == "" {
		csrf = doc.Find("meta[name=csrf-token]").AttrOr("content", "")
	}
	if csrf == "" {
		span.SetStatus(codes.Error, "failed to find csrf token")
		return "", fmt.Errorf("could not find csrf token on login page")
	}
	return csrf, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	// set when the account requires a security code
	Challenge   string `json:"challenge"`
	ChallengeId string `json:"challengeId"`

	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenId      string `json:"token_id"`
}

type verifyRequest struct {
	ChallengeId string `json:"challengeId"`
	Code        string `json:"code"`
}

func (c *Client) bundle(ctx context.Context, res loginResponse) (TokenBundle, error) {
	out := TokenBundle{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenId:      res.TokenId,
	}
	if out.AccessToken == "" {
		return TokenBundle{}, fmt.Errorf("login response carried no access token")
	}

	lifetime, err := jwtutil.Expiry(out.AccessToken)
	if err == nil {
		out.ExpiresAt = lifetime.ExpiresAt
	}
	return out, nil
}

// Login runs the full flow: csrf scrape, credential post, and the OTP
// challenge when the CRM demands one.
func (c *Client) Login(ctx context.Context, email, password string) (TokenBundle, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	csrf, err := c.fetchCsrfToken(ctx)
	if err != nil {
		return TokenBundle{}, err
	}

	var body loginResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-csrf-token", csrf).
		SetBody(loginRequest{Email: email, Password: password}).
		SetResult(&body).
		SetError(&body).
		Post("/oauth/login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to post credentials")
		return TokenBundle{}, err
	}

	switch {
	case res.StatusCode() == 401 || res.StatusCode() == 403:
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return TokenBundle{}, ErrInvalidCredentials
	case res.IsError():
		err := fmt.Errorf("login failed: status %d: %s", res.StatusCode(), res.String())
		span.SetStatus(codes.Error, err.Error())
		return TokenBundle{}, err
	}

	if body.Challenge == "" {
		return c.bundle(ctx, body)
	}

	return c.verifyChallenge(ctx, csrf, body.ChallengeId)
}

func (c *Client) verifyChallenge(ctx context.Context, csrf, challengeId string) (TokenBundle, error) {
	ctx, span := tracer.Start(ctx, "client:verifyChallenge")
	defer span.End()

	if c.otp == nil {
		span.SetStatus(codes.Error, ErrNoOTPProvider.Error())
		return TokenBundle{}, ErrNoOTPProvider
	}

	code, err := c.otp.WaitForCode(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "otp provider failed")
		return TokenBundle{}, fmt.Errorf("otp provider: %w", err)
	}

	var body loginResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-csrf-token", csrf).
		SetBody(verifyRequest{ChallengeId: challengeId, Code: code}).
		SetResult(&body).
		Post("/oauth/login/verify")
	if err != nil {
		span.SetStatus(codes.Error, "failed to post security code")
		return TokenBundle{}, err
	}
	if res.StatusCode() == 401 || res.StatusCode() == 403 {
		span.SetStatus(codes.Error, ErrOTPRejected.Error())
		return TokenBundle{}, ErrOTPRejected
	}
	if res.IsError() {
		err := fmt.Errorf("security code verify failed: status %d: %s", res.StatusCode(), res.String())
		span.SetStatus(codes.Error, err.Error())
		return TokenBundle{}, err
	}

	return c.bundle(ctx, body)
}
