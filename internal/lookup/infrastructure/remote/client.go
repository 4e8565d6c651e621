package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	order "github.com/luciferfruits/storefront/internal/order/domain"
)

// Client calls the hosted order-tracking function.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

type trackRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

type trackResponse struct {
	Success   bool          `json:"success"`
	Orders    []order.Order `json:"orders"`
	Timestamp string        `json:"timestamp"`
}

// Track posts the lookup request. The caller bounds it with ctx.
func (c *Client) Track(ctx context.Context, email string) ([]order.Order, error) {
	body, err := json.Marshal(trackRequest{Email: email, Action: "track"})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("track: unexpected status %d", resp.StatusCode)
	}

	var out trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("track: decode response: %w", err)
	}
	return out.Orders, nil
}
