package domain_test

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/zerr"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want domain.Language
	}{
		{"/app.tsx", domain.LangTSX},
		{"/app.TSX", domain.LangTSX},
		{"/app.jsx", domain.LangJSX},
		{"/lib/util.ts", domain.LangTS},
		{"/app.js", domain.LangJS},
		{"/app.mjs", domain.LangJS},
		{"/app", domain.LangJS},
		{"/dir.ts/app", domain.LangJS},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.LanguageFromPath(tt.path))
		})
	}
}

func TestLoaderRequest_CacheKey(t *testing.T) {
	req := &domain.LoaderRequest{SourceURL: mustParse(t, "https://example.com/app.tsx")}
	assert.Equal(t, "https://example.com/app.tsx", req.CacheKey())

	req.Version = "1.2.0"
	assert.Equal(t, "https://example.com/app.tsx?v=1.2.0", req.CacheKey())
}

func TestLoaderRequest_FetchURL(t *testing.T) {
	t.Run("without version", func(t *testing.T) {
		req := &domain.LoaderRequest{SourceURL: mustParse(t, "https://example.com/app.tsx?a=1")}
		assert.Equal(t, "https://example.com/app.tsx?a=1", req.FetchURL())
	})

	t.Run("with version", func(t *testing.T) {
		req := &domain.LoaderRequest{
			SourceURL: mustParse(t, "https://example.com/app.tsx?a=1"),
			Version:   "2",
		}
		assert.Equal(t, "https://example.com/app.tsx?a=1&v=2", req.FetchURL())
		// The source URL itself must not be modified.
		assert.Equal(t, "https://example.com/app.tsx?a=1", req.SourceURL.String())
	})
}

func TestLoaderRequest_Validate(t *testing.T) {
	var nilReq *domain.LoaderRequest
	require.ErrorIs(t, nilReq.Validate(), domain.ErrMissingTarget)
	require.ErrorIs(t, (&domain.LoaderRequest{}).Validate(), domain.ErrMissingTarget)

	err := (&domain.LoaderRequest{SourceURL: mustParse(t, "app.tsx")}).Validate()
	require.ErrorIs(t, err, domain.ErrInvalidSourceURL)

	require.NoError(t, (&domain.LoaderRequest{SourceURL: mustParse(t, "https://a.test/app.tsx")}).Validate())
}

func TestCacheEntry_IsFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		entry  *domain.CacheEntry
		maxAge time.Duration
		want   bool
	}{
		{"nil entry", nil, time.Hour, false},
		{"no content", &domain.CacheEntry{FetchedAt: now}, time.Hour, false},
		{"no timestamp", &domain.CacheEntry{Content: "x"}, time.Hour, false},
		{"within window", &domain.CacheEntry{Content: "x", FetchedAt: now.Add(-30 * time.Minute)}, time.Hour, true},
		{"exactly at window", &domain.CacheEntry{Content: "x", FetchedAt: now.Add(-time.Hour)}, time.Hour, true},
		{"expired", &domain.CacheEntry{Content: "x", FetchedAt: now.Add(-2 * time.Second)}, time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.IsFresh(now, tt.maxAge))
		})
	}
}

func TestCacheFieldKey(t *testing.T) {
	assert.Equal(t,
		"esm.sh/xs/content:https://example.com/app.tsx?v=1",
		domain.CacheFieldKey(domain.FieldContent, "https://example.com/app.tsx?v=1"),
	)
	assert.Equal(t, "esm.sh/xs/lastmod:k", domain.CacheFieldKey(domain.FieldLastModified, "k"))
}

func TestImportMap_CanonicalJSON(t *testing.T) {
	var empty *domain.ImportMap
	assert.JSONEq(t, "{}", string(empty.CanonicalJSON()))
	assert.Equal(t, "{}", string((&domain.ImportMap{}).CanonicalJSON()))

	m := &domain.ImportMap{
		Imports: domain.SpecifiersOf(map[string]string{"react": "https://esm.sh/react", "preact": "https://esm.sh/preact"}),
	}
	assert.Equal(t,
		`{"imports":{"preact":"https://esm.sh/preact","react":"https://esm.sh/react"}}`,
		string(m.CanonicalJSON()),
	)
}

func TestLoadState_String(t *testing.T) {
	assert.Equal(t, "CACHE_HIT_FRESH", domain.StateCacheHitFresh.String())
	assert.Equal(t, "FAILED", domain.StateFailed.String())
	assert.Equal(t, "LoadState(42)", domain.LoadState(42).String())
}

func TestModule_Annotated(t *testing.T) {
	m := domain.Module{Code: "console.log(1)", SourceURL: "https://example.com/app.tsx"}
	assert.Equal(t, "console.log(1)\n//# sourceURL=https://example.com/app.tsx", m.Annotated())
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"missing target", domain.ErrMissingTarget, "missing_target"},
		{"wrapped fetch", zerr.With(fmt.Errorf("%w: boom", domain.ErrFetch), "url", "u"), "fetch"},
		{"transform", &domain.TransformError{Message: "syntax error"}, "transform"},
		{"execution", fmt.Errorf("%w: exit 1", domain.ErrExecution), "execution"},
		{"other", errors.New("other"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Kind(tt.err))
		})
	}
}

func TestTransformError(t *testing.T) {
	err := error(&domain.TransformError{Message: "syntax error"})
	require.ErrorIs(t, err, domain.ErrTransform)
	assert.Equal(t, "transform error: syntax error", err.Error())
}

func TestSettings_ResolveLocalDev(t *testing.T) {
	local := mustParse(t, "http://localhost:8080/index.html")
	remote := mustParse(t, "https://example.com/index.html")

	s := domain.DefaultSettings("es2022")
	assert.True(t, s.ResolveLocalDev(local))
	assert.True(t, s.ResolveLocalDev(mustParse(t, "http://127.0.0.1/")))
	assert.False(t, s.ResolveLocalDev(remote))
	assert.False(t, s.ResolveLocalDev(nil))

	s.LocalDev = domain.LocalDevOff
	assert.False(t, s.ResolveLocalDev(local))

	s.LocalDev = domain.LocalDevOn
	assert.True(t, s.ResolveLocalDev(remote))
}

func TestSettings_Clone(t *testing.T) {
	s := domain.DefaultSettings("es2022")
	s.CredentialHeaders = map[string]string{"Authorization": "Bearer a"}

	c := s.Clone()
	c.Runtime[0] = "deno"
	c.CredentialHeaders["Authorization"] = "Bearer b"

	assert.Equal(t, "node", s.Runtime[0])
	assert.Equal(t, "Bearer a", s.CredentialHeaders["Authorization"])
}

func TestParseImportMap(t *testing.T) {
	m, err := domain.ParseImportMap([]byte(`{
		// pinned
		"imports": {"react": "https://esm.sh/react@18",},
		"scopes": {"/legacy/": {"react": "https://esm.sh/react@16"}},
		"compilerOptions": {"jsx": "react-jsx"},
	}`))
	require.NoError(t, err)
	target, ok := m.Imports.Target("react")
	assert.True(t, ok)
	assert.Equal(t, "https://esm.sh/react@18", target)
	target, ok = m.Scopes["/legacy/"].Target("react")
	assert.True(t, ok)
	assert.Equal(t, "https://esm.sh/react@16", target)

	_, err = domain.ParseImportMap([]byte(`{"imports": `))
	require.ErrorIs(t, err, domain.ErrImportMapParse)

	_, err = domain.ParseImportMap([]byte(`{"imports": ["react"]}`))
	require.ErrorIs(t, err, domain.ErrImportMapParse)
}

func TestParseImportMap_KeepsNonStringEntries(t *testing.T) {
	m, err := domain.ParseImportMap([]byte(`{"imports": {"react": "https://esm.sh/react@18", "flags": [1, 2], "n": null}}`))
	require.NoError(t, err)

	_, ok := m.Imports.Target("flags")
	assert.False(t, ok)
	_, ok = m.Imports.Target("missing")
	assert.False(t, ok)
	assert.Equal(t,
		`{"imports":{"flags":[1,2],"n":null,"react":"https://esm.sh/react@18"}}`,
		string(m.CanonicalJSON()),
	)
}
