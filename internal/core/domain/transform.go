package domain

import "encoding/json"

// TransformRequest is the body posted to the transform endpoint.
type TransformRequest struct {
	Filename  string          `json:"filename"`
	Lang      Language        `json:"lang"`
	Code      string          `json:"code"`
	Target    string          `json:"target"`
	ImportMap json.RawMessage `json:"importMap"`
	Minify    bool            `json:"minify"`
}

// TransformResponse is the body returned by the transform endpoint.
type TransformResponse struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// FingerprintInput is the tuple addressed by a content fingerprint.
type FingerprintInput struct {
	Language  Language
	Source    string
	Target    string
	ImportMap []byte
	Minify    bool
}

// SourceRequest describes a raw source fetch.
type SourceRequest struct {
	URL             string
	IfNoneMatch     string
	IfModifiedSince string
	// Reload bypasses intermediate HTTP caches.
	Reload         bool
	UseCredentials bool
}

// IsConditional reports whether the request carries validators.
func (r SourceRequest) IsConditional() bool {
	return r.IfNoneMatch != "" || r.IfModifiedSince != ""
}

// SourceResponse is the outcome of a raw source fetch that reached the server.
type SourceResponse struct {
	StatusCode   int
	Status       string
	Body         string
	ETag         string
	LastModified string
}

// OK reports a 2xx status.
func (r *SourceResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NotModified reports a 304 status.
func (r *SourceResponse) NotModified() bool {
	return r.StatusCode == 304
}
