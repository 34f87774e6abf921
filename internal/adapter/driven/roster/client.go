// Package roster implements the RosterClient port against the course
// management system's REST API.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/D-EdTech/lti-iib-credentials/internal/domain/model"
	"github.com/D-EdTech/lti-iib-credentials/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RosterClient = (*Client)(nil)

// Client implements the driven.RosterClient port.
//
// Every call acquires a fresh bearer token first, mirroring the upstream
// API's short token lifetimes. Calls are paced by a shared rate limiter
// instead of sleeps between requests, and each request carries its own
// timeout so a stalled upstream degrades to a per-item failure rather than
// hanging the pass.
type Client struct {
	http         *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	limiter      *rate.Limiter
	timeout      time.Duration
}

// NewClient creates a roster client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. net/http with the configured per-call timeout
//
// callDelay is the minimum spacing between requests to respect upstream
// rate limits.
func NewClient(baseURL, clientID, clientSecret string, callDelay, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	return &Client{
		http:         &http.Client{Transport: cacheTransport},
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      rate.NewLimiter(rate.Every(callDelay), 1),
		timeout:      timeout,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and no
// call pacing. This constructor is intended for testing, allowing injection
// of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, clientID, clientSecret string) *Client {
	return &Client{
		http:         httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		timeout:      15 * time.Second,
	}
}

// token exchanges client credentials for a bearer token. Transient failures
// are retried with exponential backoff before giving up.
func (c *Client) token(ctx context.Context) (string, error) {
	var accessToken string

	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		form := url.Values{"grant_type": {"client_credentials"}}
		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
			c.baseURL+"/learn/api/public/v1/oauth2/token",
			strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(c.clientID, c.clientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		return "", fmt.Errorf("fetching roster token: %w", err)
	}
	return accessToken, nil
}

// getJSON performs one paced, token-authenticated GET and decodes the
// response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}

// ResolveCourseID maps an external course identifier to the internal
// course id. Empty results means the course does not exist, which is a
// legitimate outcome reported as ("", nil).
func (c *Client) ResolveCourseID(ctx context.Context, externalID string) (string, error) {
	var body struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	path := "/learn/api/public/v1/courses?externalId=" + url.QueryEscape(externalID)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 {
		return "", nil
	}
	return body.Results[0].ID, nil
}

// ListStudents returns the course's memberships filtered to the Student
// role.
func (c *Client) ListStudents(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var body struct {
		Results []struct {
			UserID       string `json:"userId"`
			CourseRoleID string `json:"courseRoleId"`
		} `json:"results"`
	}
	path := "/learn/api/public/v1/courses/" + url.PathEscape(courseID) + "/users"
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}

	students := make([]model.Enrollment, 0, len(body.Results))
	for _, m := range body.Results {
		if m.CourseRoleID != model.RoleStudent {
			continue
		}
		students = append(students, model.Enrollment{UserID: m.UserID, Role: m.CourseRoleID})
	}
	return students, nil
}

// FetchStudentDetail returns the full profile for one enrollment.
func (c *Client) FetchStudentDetail(ctx context.Context, userID string) (*model.RosterStudent, error) {
	var body struct {
		UUID     string `json:"uuid"`
		UserName string `json:"userName"`
		Name     struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"name"`
		Contact struct {
			Email string `json:"email"`
		} `json:"contact"`
	}
	path := "/learn/api/public/v1/users/" + url.PathEscape(userID)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}

	return &model.RosterStudent{
		UUID:       body.UUID,
		Username:   body.UserName,
		GivenName:  body.Name.Given,
		FamilyName: body.Name.Family,
		Email:      body.Contact.Email,
	}, nil
}
