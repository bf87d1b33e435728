// Package supabase is a thin PostgREST client for the hosted database.
// Repositories build query maps; this package handles auth headers,
// timeouts, and upsert conflict resolution.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every database round trip. Callers treat a
// timeout as "no data", so this must stay short enough that a hung
// collaborator never blocks a page load.
const DefaultTimeout = 5 * time.Second

// Client talks to a Supabase project's REST and auth endpoints
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client using the service role key
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// do executes one REST request and returns the response body.
// Any status >= 400 is surfaced as an error with the body attached.
func (c *Client) do(ctx context.Context, method, url string, query map[string]string, payload interface{}, prefer string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if len(query) > 0 {
		q := req.URL.Query()
		for key, value := range query {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.URL, table)
}

// Query runs a filtered SELECT against a table
func (c *Client) Query(ctx context.Context, table string, query map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.tableURL(table), query, nil, "")
}

// Insert creates one or more rows and returns the created representation
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.tableURL(table), nil, data, "return=representation")
}

// Upsert inserts rows, merging into existing rows on conflict.
// onConflict names the unique-key columns (e.g. "user_id,metric_type").
// This is the only write primitive safe against concurrent duplicate
// deliveries: the database resolves the race, not the application.
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	query := map[string]string{"on_conflict": onConflict}
	return c.do(ctx, http.MethodPost, c.tableURL(table), query, data, "return=representation,resolution=merge-duplicates")
}

// UpdateWhere patches all rows matching the query filters
func (c *Client) UpdateWhere(ctx context.Context, table string, query map[string]string, data interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, c.tableURL(table), query, data, "return=representation")
}

// DeleteWhere removes all rows matching the query filters
func (c *Client) DeleteWhere(ctx context.Context, table string, query map[string]string) error {
	_, err := c.do(ctx, http.MethodDelete, c.tableURL(table), query, nil, "")
	return err
}

// User is the subset of the Supabase auth user this backend cares about
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VerifyToken validates a user JWT against the Supabase auth endpoint
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("token verification failed (status %d): %s", resp.StatusCode, string(body))
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}
