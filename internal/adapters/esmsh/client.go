// Package esmsh implements the prebuilt artifact and transform ports against an esm.sh endpoint.
package esmsh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.trai.ch/xs/internal/adapters/fingerprint"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
)

const transformPath = "/transform"

// Client implements ports.ArtifactResolver and ports.Transformer.
type Client struct {
	httpClient *http.Client
}

// New creates a Client. A zero timeout means no client timeout.
func New(timeout time.Duration) *Client {
	return NewWithClient(&http.Client{Timeout: timeout})
}

// NewWithClient creates a Client using httpClient (used for testing).
func NewWithClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Lookup fetches the prebuilt artifact addressed by fp.
// A 404 is reported as not found without an error.
func (c *Client) Lookup(ctx context.Context, endpoint *url.URL, fp string, reload bool) (string, bool, error) {
	target := endpoint.ResolveReference(&url.URL{Path: fingerprint.PrebuiltPath(fp)}).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", false, fetchErr(err, target)
	}
	if reload {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fetchErr(err, target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, statusErr(resp, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fetchErr(err, target)
	}
	return string(body), true, nil
}

// Transform posts treq to the transform service of endpoint.
func (c *Client) Transform(ctx context.Context, endpoint *url.URL, treq domain.TransformRequest) (string, error) {
	target := endpoint.ResolveReference(&url.URL{Path: transformPath}).String()

	payload, err := json.Marshal(treq)
	if err != nil {
		return "", zerr.Wrap(err, "failed to encode transform request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", fetchErr(err, target)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fetchErr(err, target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusErr(resp, target)
	}

	var out domain.TransformResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fetchErr(err, target)
	}
	if out.Error != "" {
		return "", &domain.TransformError{Message: out.Error}
	}
	return out.Code, nil
}

func fetchErr(err error, target string) error {
	return zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, err), "url", target)
}

func statusErr(resp *http.Response, target string) error {
	err := zerr.With(fmt.Errorf("%w: %s", domain.ErrFetch, resp.Status), "url", target)
	return zerr.With(err, "status", resp.StatusCode)
}
