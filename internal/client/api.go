// Package client talks to the remote events API. The API is an opaque
// collaborator: it may pre-filter by league, day, or limit, but the local
// pipeline always re-filters the result.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sandevgo/courtside/internal/config"
	"github.com/sandevgo/courtside/internal/core"
	"github.com/sandevgo/courtside/pkg/retry"
)

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	retrier *retry.Retrier
}

var _ core.EventSource = (*Client)(nil)

func New(cfg *config.APIConfig) *Client {
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		retrier: retry.New(nil),
	}
}

// FetchEvents pulls the event list, optionally pre-filtered at the source.
func (c *Client) FetchEvents(ctx context.Context, q core.EventsQuery) ([]core.Event, error) {
	params := url.Values{}
	if q.League != "" {
		params.Set("league", q.League)
	}
	if q.Day != "" {
		params.Set("day", q.Day)
	}
	if q.IncludePredictions {
		params.Set("include_predictions", "true")
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var events []core.Event
	if err := c.getJSON(ctx, "/v1/events", params, &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return events, nil
}

// FetchPredictions pulls the full prediction set.
func (c *Client) FetchPredictions(ctx context.Context) ([]core.Prediction, error) {
	var predictions []core.Prediction
	if err := c.getJSON(ctx, "/v1/predictions", nil, &predictions); err != nil {
		return nil, fmt.Errorf("fetch predictions: %w", err)
	}
	return predictions, nil
}

// getJSON retries transport failures with backoff; a response that
// arrives but fails to decode is a data problem and is not retried.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	var body []byte
	err := c.retrier.Do(ctx, func() error {
		var opErr error
		body, opErr = c.get(ctx, path, params)
		return opErr
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", core.ErrBadData, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.CourtsideUserAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", core.ErrFetch, path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", core.ErrFetch, err)
	}
	return body, nil
}
