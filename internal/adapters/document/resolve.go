package document

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxAgeSeconds is the longest window a time.Duration can hold.
const maxAgeSeconds = math.MaxInt64 / int64(time.Second)

// Resolver turns loader elements into loader requests.
type Resolver struct {
	// Endpoint serves prebuilt artifacts and transforms when the element src is not an http(s) URL.
	Endpoint *url.URL
	Target   string
	// MaxAge applies when the element has no max-age attribute.
	MaxAge time.Duration
	Logger ports.Logger
}

// Resolve builds the loader request of el. It performs no network activity.
func (r *Resolver) Resolve(doc *Document, el *Element) (*domain.LoaderRequest, error) {
	href, ok := el.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return nil, domain.ErrMissingTarget
	}

	source, err := resolveURL(doc.PageURL(), href)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidSourceURL, err), "href", href)
	}

	version, _ := el.Attr("version")
	pageQuery := url.Values{}
	if doc.PageURL() != nil {
		pageQuery = doc.PageURL().Query()
	}

	req := &domain.LoaderRequest{
		SourceURL:      source,
		Version:        version,
		Endpoint:       r.endpointFor(doc, el),
		NoCache:        el.Has("no-cache") || pageQuery.Has("no-cache"),
		ForceRefresh:   el.Has("refresh") || pageQuery.Has("refresh"),
		CheckModified:  el.Has("check-modified"),
		UseCredentials: el.Has("credentials"),
		MaxAge:         r.maxAge(el),
		Language:       domain.LanguageFromPath(source.Path),
		Target:         r.Target,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Resolver) maxAge(el *Element) time.Duration {
	fallback := r.MaxAge
	if fallback == 0 {
		fallback = domain.DefaultMaxAge
	}

	raw, ok := el.Attr("max-age")
	if !ok {
		return fallback
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || seconds < 0 {
		r.Logger.Warn(fmt.Sprintf("%s invalid max-age %q on %s, using %s",
			domain.DiagnosticPrefix, raw, el.Label(), fallback))
		return fallback
	}
	if seconds > maxAgeSeconds {
		return time.Duration(maxAgeSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// endpointFor returns the origin of the element src when it is an http(s) URL.
func (r *Resolver) endpointFor(doc *Document, el *Element) *url.URL {
	src, _ := el.Attr("src")
	u, err := resolveURL(doc.PageURL(), strings.TrimSpace(src))
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &url.URL{Scheme: u.Scheme, Host: u.Host}
	}
	return r.Endpoint
}

func resolveURL(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%q is not absolute and the page has no URL", ref)
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u, nil
}
