package onboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded into the shared error shape.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("onboardsdk: %s (%d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("onboardsdk: %s (%d)", e.Code, e.StatusCode)
}

// Client talks to the onboarding service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken authorizes invitation creation. Leave empty for
	// clients that only validate and redeem.
	AdminToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateInvitation creates a placeholder account and emails its owner a
// redemption link. Requires AdminToken.
func (c *Client) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (CreateInvitationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return CreateInvitationResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/invitations", bytes.NewReader(body))
	if err != nil {
		return CreateInvitationResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.AdminToken)

	var out CreateInvitationResponse
	if err := c.do(httpReq, &out); err != nil {
		return CreateInvitationResponse{}, err
	}
	return out, nil
}

// ValidateToken checks whether an invitation token is still redeemable
// and returns the form pre-fill snapshot.
func (c *Client) ValidateToken(ctx context.Context, token string) (ValidateResponse, error) {
	u := c.BaseURL + "/v1/onboarding/validate?token=" + url.QueryEscape(token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ValidateResponse{}, err
	}

	var out ValidateResponse
	if err := c.do(httpReq, &out); err != nil {
		return ValidateResponse{}, err
	}
	return out, nil
}

// Redeem converts the invitation into a real account and signs it in.
// firstName and lastName are optional overrides of the admin-entered
// names.
func (c *Client) Redeem(ctx context.Context, token, password, firstName, lastName string) (RedeemResponse, error) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("password", password)
	if firstName != "" {
		form.Set("first_name", firstName)
	}
	if lastName != "" {
		form.Set("last_name", lastName)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/onboarding/redeem", strings.NewReader(form.Encode()))
	if err != nil {
		return RedeemResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out RedeemResponse
	if err := c.do(httpReq, &out); err != nil {
		return RedeemResponse{}, err
	}
	return out, nil
}

// Livez reports basic service health.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/livez", nil)
	if err != nil {
		return HealthResponse{}, err
	}

	var out HealthResponse
	if err := c.do(httpReq, &out); err != nil {
		return HealthResponse{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown_error"}
		var body ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Description = body.ErrorDescription
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
