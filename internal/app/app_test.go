package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/xs/internal/adapters/fingerprint"
	"go.trai.ch/xs/internal/adapters/metrics"
	"go.trai.ch/xs/internal/adapters/sink"
	"go.trai.ch/xs/internal/app"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// site serves pages, sources and a transform service that never has prebuilt artifacts.
type site struct {
	*httptest.Server

	mu         sync.Mutex
	pages      map[string]string
	sources    map[string]string
	transforms []domain.TransformRequest
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{
		pages:   make(map[string]string),
		sources: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost && r.URL.Path == "/transform" {
		var req domain.TransformRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.transforms = append(s.transforms, req)
		_ = json.NewEncoder(w).Encode(domain.TransformResponse{Code: "compiled()"})
		return
	}
	if page, ok := s.pages[r.URL.Path]; ok {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
		return
	}
	if src, ok := s.sources[r.URL.Path]; ok {
		_, _ = w.Write([]byte(src))
		return
	}
	http.NotFound(w, r)
}

func (s *site) addPage(path, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = html
}

func (s *site) addSource(path, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[path] = src
}

func (s *site) transformRequests() []domain.TransformRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TransformRequest(nil), s.transforms...)
}

type harness struct {
	app      *app.App
	settings *domain.Settings
	recorder *metrics.Recorder
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	settings := domain.DefaultSettings("es2022")
	settings.CacheBackend = domain.CacheBackendMemory
	settings.CacheDir = t.TempDir()
	settings.LocalDev = domain.LocalDevOff

	configLoader := mocks.NewMockConfigLoader(ctrl)
	configLoader.EXPECT().Load(gomock.Any()).Return(&settings, nil).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	h := &harness{
		settings: &settings,
		recorder: metrics.NewRecorder(),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	h.app = app.New(configLoader, log, fingerprint.New(), h.recorder).
		WithIO(strings.NewReader(""), h.stdout, h.stderr)
	return h
}

func TestApp_Load_PrintSink(t *testing.T) {
	s := newSite(t)
	s.addPage("/index.html", `<html><head></head><body>`+
		`<script src="/xs" href="/app.tsx"></script>`+
		`<script src="/xs" href="/lib.ts" version="2"></script>`+
		`<script src="/other.js"></script>`+
		`</body></html>`)
	s.addSource("/app.tsx", "export default 1")
	s.addSource("/lib.ts", "export const x: number = 1")

	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{
		Document: s.URL + "/index.html",
		Sink:     sink.KindPrint,
		Dir:      t.TempDir(),
	})
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "compiled()\n//# sourceURL="+s.URL+"/app.tsx\n")
	assert.Contains(t, out, "compiled()\n//# sourceURL="+s.URL+"/lib.ts\n")

	reqs := s.transformRequests()
	require.Len(t, reqs, 2)
	langs := []domain.Language{reqs[0].Lang, reqs[1].Lang}
	assert.ElementsMatch(t, []domain.Language{domain.LangTSX, domain.LangTS}, langs)
}

func TestApp_Load_DocumentSink(t *testing.T) {
	s := newSite(t)
	s.addPage("/index.html", `<!DOCTYPE html><html><head>`+
		`<script type="importmap">{"imports":{"react":"https://esm.sh/react@18"}}</script>`+
		`</head><body>`+
		`<script src="/xs" href="/app.tsx"></script>`+
		`<script src="/xs" href="/missing.tsx"></script>`+
		`</body></html>`)
	s.addSource("/app.tsx", "export default 1")

	out := filepath.Join(t.TempDir(), "out.html")
	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{
		Document: s.URL + "/index.html",
		Sink:     sink.KindDocument,
		Out:      out,
		Dir:      t.TempDir(),
	})
	require.ErrorIs(t, err, domain.ErrLoadFailed)
	require.ErrorIs(t, err, domain.ErrFetch)
	assert.Contains(t, err.Error(), "failed to load /missing.tsx")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	rendered := strings.ReplaceAll(string(data), s.URL, "http://origin.test")

	g := goldie.New(t)
	g.Assert(t, "document_sink", []byte(rendered))

	reqs := s.transformRequests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"imports":{"react":"https://esm.sh/react@18"}}`, string(reqs[0].ImportMap))
}

func TestApp_Load_DocumentSinkToStdout(t *testing.T) {
	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")

	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><head></head><body><script src="`+s.URL+`/xs" href="app.tsx"></script></body></html>`), 0o600))

	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{
		Document: page,
		PageURL:  s.URL + "/index.html",
		Sink:     sink.KindDocument,
		Dir:      dir,
	})
	require.NoError(t, err)
	assert.Contains(t, h.stdout.String(), `<script type="module">compiled()`)
	assert.NotContains(t, h.stdout.String(), `href="app.tsx"`)
}

func TestApp_Load_ExecutionFailureBecomesDiagnostic(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")
	s.addPage("/index.html", `<html><head></head><body><script src="/xs" href="/app.tsx"></script></body></html>`)

	h := newHarness(t)
	h.settings.Runtime = []string{"sh", "-c", "exit 3"}

	out := filepath.Join(t.TempDir(), "out.html")
	err := h.app.Load(t.Context(), app.LoadOptions{
		Document: s.URL + "/index.html",
		Sink:     sink.KindRuntime,
		Out:      out,
		Dir:      t.TempDir(),
	})
	require.ErrorIs(t, err, domain.ErrLoadFailed)
	require.ErrorIs(t, err, domain.ErrExecution)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data),
		`<script type="module">console.error("[esm.sh/xs] error:", "module execution failed: exit status 3")</script>`)
	assert.NotContains(t, string(data), `href="/app.tsx"`)
}

func TestApp_Load_MissingHref(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body><script src="https://esm.sh/xs"></script></body></html>`), 0o600))

	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{Document: page, Sink: sink.KindPrint, Dir: dir})
	require.ErrorIs(t, err, domain.ErrLoadFailed)
	require.ErrorIs(t, err, domain.ErrMissingTarget)
	assert.Empty(t, h.stdout.String())
}

func TestApp_Load_NoLoaderElements(t *testing.T) {
	h := newHarness(t)
	h.app.WithIO(strings.NewReader(`<html><body><script src="/app.js"></script></body></html>`), h.stdout, h.stderr)

	err := h.app.Load(t.Context(), app.LoadOptions{Document: "-", Sink: sink.KindPrint, Dir: t.TempDir()})
	require.ErrorIs(t, err, domain.ErrNoLoaderElements)
}

func TestApp_Load_InvalidPageURL(t *testing.T) {
	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{Document: "-", PageURL: "index.html", Dir: t.TempDir()})
	require.ErrorIs(t, err, domain.ErrInvalidSourceURL)
}

func TestApp_Load_ImportMapFile(t *testing.T) {
	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")
	s.addPage("/index.html", `<html><body><script src="/xs" href="/app.tsx"></script></body></html>`)

	dir := t.TempDir()
	importMapFile := filepath.Join(dir, "deno.json")
	require.NoError(t, os.WriteFile(importMapFile, []byte(`{
		// shared with the deno tooling
		"imports": {"preact": "https://esm.sh/preact@10",},
	}`), 0o600))

	h := newHarness(t)
	h.settings.ImportMapFile = importMapFile

	err := h.app.Load(t.Context(), app.LoadOptions{Document: s.URL + "/index.html", Sink: sink.KindPrint, Dir: dir})
	require.NoError(t, err)

	reqs := s.transformRequests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"imports":{"preact":"https://esm.sh/preact@10"}}`, string(reqs[0].ImportMap))
}

func TestApp_Load_LocalDevAuto(t *testing.T) {
	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")
	s.addPage("/index.html", `<html><body><script src="/xs" href="/app.tsx"></script></body></html>`)

	h := newHarness(t)
	h.settings.LocalDev = domain.LocalDevAuto

	err := h.app.Load(t.Context(), app.LoadOptions{Document: s.URL + "/index.html", Sink: sink.KindPrint, Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Contains(t, h.stdout.String(), "export default 1\n//# sourceURL=")
	assert.Empty(t, s.transformRequests())
}

func TestApp_Load_Metrics(t *testing.T) {
	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")
	s.addPage("/index.html", `<html><body><script src="/xs" href="/app.tsx"></script></body></html>`)

	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{
		Document: s.URL + "/index.html",
		Sink:     sink.KindPrint,
		Metrics:  true,
		Dir:      t.TempDir(),
	})
	require.NoError(t, err)
	assert.Contains(t, h.stderr.String(), `xs_loads_total{origin="transform",result="ok"} 1`)
}

func TestApp_InspectAndClear(t *testing.T) {
	s := newSite(t)
	s.addSource("/app.tsx", "export default 1")
	s.addPage("/index.html", `<html><body><script src="/xs" href="/app.tsx" version="7"></script></body></html>`)

	h := newHarness(t)
	h.settings.CacheBackend = domain.CacheBackendDisk
	dir := t.TempDir()

	require.NoError(t, h.app.Load(t.Context(), app.LoadOptions{Document: s.URL + "/index.html", Sink: sink.KindPrint, Dir: dir}))

	entry, err := h.app.Inspect(t.Context(), dir, s.URL+"/app.tsx", "7")
	require.NoError(t, err)
	assert.Equal(t, "compiled()", entry.Content)
	assert.Equal(t, s.URL+"/app.tsx", entry.SourceURL)

	_, err = h.app.Inspect(t.Context(), dir, s.URL+"/app.tsx", "")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = h.app.Inspect(t.Context(), dir, "app.tsx", "")
	require.ErrorIs(t, err, domain.ErrInvalidSourceURL)

	require.NoError(t, h.app.Clear(t.Context(), dir))

	_, err = h.app.Inspect(t.Context(), dir, s.URL+"/app.tsx", "7")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestApp_Clear_DisabledStore(t *testing.T) {
	h := newHarness(t)
	h.settings.CacheBackend = domain.CacheBackendDisabled

	err := h.app.Clear(t.Context(), t.TempDir())
	require.ErrorIs(t, err, domain.ErrStorage)
}

func TestApp_Load_WatchNeedsFile(t *testing.T) {
	h := newHarness(t)
	err := h.app.Load(t.Context(), app.LoadOptions{Document: "-", Watch: true, Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch mode needs a document file")
}
