// Package httpfetch implements the SourceFetcher port over net/http.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/publicsuffix"
)

// Fetcher implements ports.SourceFetcher.
// Credential headers and cookies are only sent for requests that ask for credentials.
type Fetcher struct {
	client      *http.Client
	credentials map[string]string
	jar         http.CookieJar
}

// New creates a Fetcher. A zero timeout means no client timeout.
func New(timeout time.Duration, credentialHeaders map[string]string) *Fetcher {
	return NewWithClient(&http.Client{Timeout: timeout}, credentialHeaders)
}

// NewWithClient creates a Fetcher using client (used for testing).
func NewWithClient(client *http.Client, credentialHeaders map[string]string) *Fetcher {
	// cookiejar.New only fails on invalid options.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Fetcher{
		client:      client,
		credentials: credentialHeaders,
		jar:         jar,
	}
}

// Jar returns the cookie jar used for credentialed requests.
func (f *Fetcher) Jar() http.CookieJar {
	return f.jar
}

// Fetch performs the GET described by req. Any HTTP status is returned as a response;
// only transport failures are reported as domain.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, req domain.SourceRequest) (*domain.SourceResponse, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, err), "url", req.URL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, err), "url", req.URL)
	}

	if req.IfNoneMatch != "" {
		httpReq.Header.Set("If-None-Match", req.IfNoneMatch)
	}
	if req.IfModifiedSince != "" {
		httpReq.Header.Set("If-Modified-Since", req.IfModifiedSince)
	}
	if req.Reload {
		httpReq.Header.Set("Cache-Control", "no-cache")
		httpReq.Header.Set("Pragma", "no-cache")
	}
	if req.UseCredentials {
		for k, v := range f.credentials {
			httpReq.Header.Set(k, v)
		}
		for _, c := range f.jar.Cookies(u) {
			httpReq.AddCookie(c)
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, err), "url", req.URL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if req.UseCredentials {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			f.jar.SetCookies(u, cookies)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, err), "url", req.URL)
	}

	return &domain.SourceResponse{
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		Body:         string(body),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
