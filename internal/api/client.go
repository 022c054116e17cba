// Package api is the HTTP+JSON transport for the Movingwise statement
// endpoints. It owns request wiring, auth-expiry detection and response
// shape validation; it performs no retries and keeps no state between calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/movingwise/reconcile/internal/model"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "https://api.movingwise.example".
	BaseURL string
	// Creds supplies the bearer token per request.
	Creds CredentialProvider
	// HTTPClient defaults to a plain http.Client (browser-default timeouts;
	// no explicit timeout policy exists for this workflow).
	HTTPClient *http.Client
	// OnUnauthorized runs once per 401/403 response, before ErrUnauthorized
	// is returned. Typically clears the session and prompts re-login.
	OnUnauthorized func()
	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Client calls the five statement-reconciliation endpoints.
type Client struct {
	baseURL        string
	http           *http.Client
	creds          CredentialProvider
	onUnauthorized func()
	logger         *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if opts.Creds == nil {
		return nil, fmt.Errorf("api: credential provider is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           httpClient,
		creds:          opts.Creds,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
	}, nil
}

// LoadResult is one page of statement records plus the optional week summary.
type LoadResult struct {
	Count   int
	Records []model.StatementRecord
	Summary *model.WeekSummary
}

// LoadByWeek fetches one page of statement records for an ISO week.
func (c *Client) LoadByWeek(ctx context.Context, week, year, page, pageSize int) (*LoadResult, error) {
	q := url.Values{}
	q.Set("week", strconv.Itoa(week))
	q.Set("year", strconv.Itoa(year))
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var envelope struct {
		Count       int                `json:"count"`
		Results     json.RawMessage    `json:"results"`
		WeekSummary *model.WeekSummary `json:"week_summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/statements/by-week/", q, nil, &envelope); err != nil {
		return nil, err
	}

	// A missing or null results array is a hard failure; no partial data.
	if len(envelope.Results) == 0 || string(envelope.Results) == "null" {
		return nil, fmt.Errorf("load statements: response has no results array")
	}
	var records []model.StatementRecord
	if err := json.Unmarshal(envelope.Results, &records); err != nil {
		return nil, fmt.Errorf("load statements: results is not a record array: %w", err)
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("load statements: %w", err)
		}
	}

	return &LoadResult{
		Count:   envelope.Count,
		Records: records,
		Summary: envelope.WeekSummary,
	}, nil
}

// UpdateState transitions a single record to newState and returns the
// updated record. The backend replies either with a bare record or with a
// {"data": record} envelope; both are accepted.
func (c *Client) UpdateState(ctx context.Context, id int64, newState model.State) (*model.StatementRecord, error) {
	if !newState.Valid() {
		return nil, fmt.Errorf("update state: invalid target state %q", string(newState))
	}

	body := map[string]model.State{"state": newState}
	path := fmt.Sprintf("/statements/%d/state/", id)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Data *model.StatementRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		if err := envelope.Data.Validate(); err != nil {
			return nil, fmt.Errorf("update state: %w", err)
		}
		return envelope.Data, nil
	}

	var rec model.StatementRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("update state: unexpected response shape: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("update state: %w", err)
	}
	return &rec, nil
}

// Verify asks the backend to match each record against company orders and
// suggest a next state.
func (c *Client) Verify(ctx context.Context, ids []int64) (*model.VerifyResponse, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("verify: no record ids given")
	}
	body := map[string][]int64{"statement_record_ids": ids}

	var resp model.VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/statements/verify/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BulkUpdateState applies a set of state transitions in one call. Per-record
// failures are reported in the response, never as a transport error.
func (c *Client) BulkUpdateState(ctx context.Context, updates []model.StateUpdate) (*model.BulkUpdateResponse, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("bulk update: empty update list")
	}
	body := map[string][]model.StateUpdate{"updates": updates}

	var resp model.BulkUpdateResponse
	if err := c.do(ctx, http.MethodPost, "/statements/bulk-update-state/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ApplyToOrders distributes a statement's amounts across its matched orders.
// orderIDs narrows the distribution to a subset; nil means all matches.
func (c *Client) ApplyToOrders(ctx context.Context, id int64, action model.Action, orderIDs []string) (*model.ApplyToOrdersResponse, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("apply to orders: invalid action %q", string(action))
	}
	body := map[string]any{
		"statement_record_id": id,
		"action":              action,
	}
	if len(orderIDs) > 0 {
		body["order_ids"] = orderIDs
	}

	var resp model.ApplyToOrdersResponse
	if err := c.do(ctx, http.MethodPost, "/statements/apply-to-orders/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	token, err := c.creds.Token()
	if err != nil {
		return fmt.Errorf("resolving credentials: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("session expired", "status", resp.StatusCode, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		c.logger.Warn("backend error", "status", resp.StatusCode, "path", path)
		return &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
