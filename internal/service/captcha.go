package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client-supplied CAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response string) (bool, error)
}

// RecaptchaVerifier validates tokens against Google's siteverify endpoint.
type RecaptchaVerifier struct {
	secret string
	client *http.Client
}

func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

var _ CaptchaVerifier = (*RecaptchaVerifier)(nil)

func (v *RecaptchaVerifier) Verify(ctx context.Context, response string) (bool, error) {
	if strings.TrimSpace(response) == "" {
		return false, nil
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {response},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, siteVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("call siteverify: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode siteverify response: %w", err)
	}
	return body.Success, nil
}

// AllowAllVerifier accepts every response. Used when no CAPTCHA secret is
// configured (local development) and in tests.
type AllowAllVerifier struct{}

func (AllowAllVerifier) Verify(ctx context.Context, response string) (bool, error) {
	return true, nil
}
