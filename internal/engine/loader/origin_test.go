package loader_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.trai.ch/xs/internal/adapters/esmsh"
	"go.trai.ch/xs/internal/adapters/fingerprint"
	"go.trai.ch/xs/internal/adapters/httpfetch"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/xs/internal/engine/loader"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeOrigin serves source files, prebuilt artifacts and the transform service.
type fakeOrigin struct {
	*httptest.Server

	mu            sync.Mutex
	hits          map[string]int
	headers       map[string]http.Header
	sources       map[string]string
	etags         map[string]string
	statuses      map[string]int
	prebuilt      map[string]string
	lookupStatus  int
	transform     func(domain.TransformRequest) domain.TransformResponse
	lastTransform domain.TransformRequest
}

func newFakeOrigin(t *testing.T) *fakeOrigin {
	t.Helper()
	o := &fakeOrigin{
		hits:     make(map[string]int),
		headers:  make(map[string]http.Header),
		sources:  make(map[string]string),
		etags:    make(map[string]string),
		statuses: make(map[string]int),
		prebuilt: make(map[string]string),
		transform: func(domain.TransformRequest) domain.TransformResponse {
			return domain.TransformResponse{Code: "console.log(1)"}
		},
	}
	o.Server = httptest.NewServer(http.HandlerFunc(o.serve))
	t.Cleanup(o.Close)
	return o
}

func (o *fakeOrigin) serve(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()

	hit := r.Method + " " + r.URL.Path
	o.hits[hit]++
	o.headers[hit] = r.Header.Clone()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/transform":
		var req domain.TransformRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		o.lastTransform = req
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(o.transform(req))

	case strings.HasPrefix(r.URL.Path, "/+"):
		if o.lookupStatus != 0 {
			w.WriteHeader(o.lookupStatus)
			return
		}
		code, ok := o.prebuilt[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(code))

	default:
		if status, ok := o.statuses[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		body, ok := o.sources[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		etag := o.etags[r.URL.Path]
		if etag != "" && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if etag != "" {
			w.Header().Set("ETag", etag)
		}
		_, _ = w.Write([]byte(body))
	}
}

func (o *fakeOrigin) setSource(path, body, etag string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources[path] = body
	o.etags[path] = etag
}

func (o *fakeOrigin) setStatus(path string, status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[path] = status
}

func (o *fakeOrigin) setPrebuilt(path, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prebuilt[path] = code
}

func (o *fakeOrigin) setLookupStatus(status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookupStatus = status
}

func (o *fakeOrigin) setTransform(fn func(domain.TransformRequest) domain.TransformResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform = fn
}

func (o *fakeOrigin) transformRequest() domain.TransformRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastTransform
}

func (o *fakeOrigin) hitCount(hit string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[hit]
}

func (o *fakeOrigin) totalHits() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, n := range o.hits {
		total += n
	}
	return total
}

func (o *fakeOrigin) header(hit string) http.Header {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.headers[hit]
}

func (o *fakeOrigin) request(t *testing.T, path string) *domain.LoaderRequest {
	t.Helper()
	src, err := url.Parse(o.URL + path)
	require.NoError(t, err)
	endpoint, err := url.Parse(o.URL)
	require.NoError(t, err)
	return &domain.LoaderRequest{
		SourceURL: src,
		Endpoint:  endpoint,
		MaxAge:    time.Hour,
		Language:  domain.LanguageFromPath(src.Path),
		Target:    "es2022",
	}
}

func (o *fakeOrigin) prebuiltPathFor(source string, importMap *domain.ImportMap) string {
	fp := fingerprint.New().Fingerprint(domain.FingerprintInput{
		Language:  domain.LangTSX,
		Source:    source,
		Target:    "es2022",
		ImportMap: importMap.CanonicalJSON(),
		Minify:    true,
	})
	return fingerprint.PrebuiltPath(fp)
}

func newOriginLoader(store ports.CacheStore, clock clockwork.Clock, log ports.Logger, opts ...loader.Option) *loader.Loader {
	opts = append([]loader.Option{loader.WithClock(clock)}, opts...)
	remote := esmsh.New(0)
	return loader.New(
		store,
		httpfetch.New(0, nil),
		remote,
		remote,
		fingerprint.New(),
		log,
		opts...,
	)
}
