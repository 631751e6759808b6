package highlevel

import (
	"context"
	"net/url"
)

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	UserType     string `json:"userType"`
	LocationId   string `json:"locationId"`
	CompanyId    string `json:"companyId"`
}

type RefreshTokenRequest struct {
	ClientId     string
	ClientSecret string
	RefreshToken string
}

// RefreshAccessToken exchanges a refresh token for a new bearer token.
// Uses the client's base url so tests can point it at a mock server.
func (c *Client) RefreshAccessToken(ctx context.Context, req RefreshTokenRequest) (TokenResponse, error) {
	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("client_id", req.ClientId)
	form.Add("client_secret", req.ClientSecret)
	form.Add("refresh_token", req.RefreshToken)

	var out TokenResponse
	_, err := checkStatus(c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		SetResult(&out).
		Post("/oauth/token"))
	if err != nil {
		return TokenResponse{}, err
	}
	return out, nil
}
