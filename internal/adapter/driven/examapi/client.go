// Package examapi implements the ExamClient port against the assessment
// platform's REST API.
package examapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ExamClient = (*Client)(nil)

// Client implements the driven.ExamClient port.
//
// Accounts are addressed by LTI external id: the platform prefixes the
// deployment id to the student's identity key. An auth failure makes every
// call on this client return an error for the rest of the pass; callers
// treat that as a per-item failed/not-found outcome, never a crash.
type Client struct {
	http         *http.Client
	baseURL      string
	clientID     string
	apiKey       string
	deploymentID string
	limiter      *rate.Limiter
	timeout      time.Duration
}

// NewClient creates an exam platform client. callDelay is the minimum
// spacing between requests to respect upstream rate limits.
func NewClient(baseURL, clientID, apiKey, deploymentID string, callDelay, timeout time.Duration) *Client {
	return &Client{
		http:         &http.Client{},
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		apiKey:       apiKey,
		deploymentID: deploymentID,
		limiter:      rate.NewLimiter(rate.Every(callDelay), 1),
		timeout:      timeout,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and no
// call pacing. This constructor is intended for testing, allowing injection
// of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, clientID, apiKey, deploymentID string) *Client {
	return &Client{
		http:         httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		apiKey:       apiKey,
		deploymentID: deploymentID,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		timeout:      15 * time.Second,
	}
}

// token exchanges the API key for a bearer token. Transient failures are
// retried with exponential backoff before giving up.
func (c *Client) token(ctx context.Context) (string, error) {
	var accessToken string

	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		form := url.Values{
			"client_id":  {c.clientID},
			"grant_type": {"authorization_code"},
		}
		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
			c.baseURL+"/authenticate/token/",
			strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("code", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("token endpoint returned %s", resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var body struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decoding token response: %w", err)
		}
		accessToken = body.AccessToken
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", fmt.Errorf("fetching exam platform token: %w", err)
	}
	return accessToken, nil
}

// LookupAccount finds an existing account by identity key. Absence (404 or
// an empty match list) is reported as (nil, nil); any transport or auth
// fault is an error so the caller can tell a network blip from a student
// who was never provisioned.
func (c *Client) LookupAccount(ctx context.Context, uuid string) (*model.ExamAccount, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lookupURL := fmt.Sprintf("%s/v1/users/external/LTI/%s?includeStudent=true",
		c.baseURL, url.PathEscape(c.deploymentID+uuid))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("looking up exam account %s: %w", uuid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("looking up exam account %s: unexpected status %s", uuid, resp.Status)
	}

	var matches []struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("looking up exam account %s: decoding response: %w", uuid, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	m := matches[0]
	return &model.ExamAccount{
		Username:  m.Username,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
	}, nil
}

// UpdateAccount pushes credential and profile changes for an existing
// account.
func (c *Client) UpdateAccount(ctx context.Context, update model.AccountUpdate) (*model.UpdateResult, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}{
		Username:  update.Username,
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Email:     update.Email,
		Password:  update.Password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		c.baseURL+"/v1/users/student", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updating exam account %s: %w", update.Username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("updating exam account %s: unexpected status %s", update.Username, resp.Status)
	}

	var body struct {
		Success  bool   `json:"success"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("updating exam account %s: decoding response: %w", update.Username, err)
	}
	return &model.UpdateResult{Success: body.Success, Username: body.Username}, nil
}
