package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
)

// StdinLocation reads the document from standard input.
const StdinLocation = "-"

// Reader loads documents from files, standard input or http(s) URLs.
type Reader struct {
	Client *http.Client
	Stdin  io.Reader
}

// Read parses the document at location. When pageURL is nil the page URL is
// derived from the location: the final URL of an http(s) fetch, a file URL for
// paths, and none for standard input.
func (r *Reader) Read(ctx context.Context, location string, pageURL *url.URL) (*Document, error) {
	body, derived, err := r.open(ctx, location)
	if err != nil {
		return nil, zerr.With(err, "document", location)
	}
	defer func() {
		_ = body.Close()
	}()

	if pageURL == nil {
		pageURL = derived
	}

	doc, err := Parse(body, pageURL)
	if err != nil {
		return nil, zerr.With(err, "document", location)
	}
	return doc, nil
}

func (r *Reader) open(ctx context.Context, location string) (io.ReadCloser, *url.URL, error) {
	switch {
	case location == StdinLocation:
		stdin := r.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil, nil

	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDocumentReadFailed, err)
		}
		client := r.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDocumentReadFailed, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrDocumentReadFailed, resp.Status)
		}
		return resp.Body, resp.Request.URL, nil

	default:
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDocumentReadFailed, err)
		}
		f, err := os.Open(abs) //nolint:gosec // the document path is provided by the user
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDocumentReadFailed, err)
		}
		return f, FileURL(abs), nil
	}
}

// FileURL returns the file URL of an absolute path.
func FileURL(abs string) *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}
