// Package app implements the application layer for xs.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/xs/internal/adapters/document"
	"go.trai.ch/xs/internal/adapters/esmsh"
	"go.trai.ch/xs/internal/adapters/httpfetch"
	"go.trai.ch/xs/internal/adapters/kvstore"
	"go.trai.ch/xs/internal/adapters/metrics"
	"go.trai.ch/xs/internal/adapters/sink"
	"go.trai.ch/xs/internal/adapters/telemetry"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/xs/internal/engine/loader"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// StdoutLocation writes the rewritten document to standard output.
const StdoutLocation = "-"

// watchWindow coalesces editor save bursts into one reload.
const watchWindow = 200 * time.Millisecond

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	logger        ports.Logger
	fingerprinter ports.Fingerprinter
	metrics       *metrics.Recorder

	clock  clockwork.Clock
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	log ports.Logger,
	fingerprinter ports.Fingerprinter,
	recorder *metrics.Recorder,
) *App {
	return &App{
		configLoader:  configLoader,
		logger:        log,
		fingerprinter: fingerprinter,
		metrics:       recorder,
		clock:         clockwork.NewRealClock(),
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
}

// WithIO replaces the standard streams. Used for testing and by the CLI.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithClock replaces the clock used for cache freshness.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// LoadOptions configures a page load.
type LoadOptions struct {
	// Document is a file path, an http(s) URL or "-" for standard input.
	Document string
	// PageURL overrides the URL the document is served from.
	PageURL string
	// Out receives the rewritten document; "-" writes to standard output.
	Out  string
	Sink sink.Kind

	NoCache bool
	Refresh bool
	Metrics bool
	Watch   bool
	Trace   bool

	// Endpoint and Target override the configured values when set.
	Endpoint string
	Target   string
	// Dir is the directory the configuration lookup starts from.
	Dir string
}

// Load resolves every loader element of a document and executes the compiled modules.
// In watch mode the page is loaded again whenever the document or the import map
// file changes, until ctx is done.
func (a *App) Load(ctx context.Context, opts LoadOptions) error {
	settings, err := a.settings(opts)
	if err != nil {
		return err
	}

	store, err := kvstore.Open(settings)
	if err != nil {
		return err
	}

	tracer, shutdown := telemetry.Setup(a.logger, opts.Trace)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	remote := esmsh.New(settings.HTTPTimeout)
	ld := loader.New(
		store,
		httpfetch.New(settings.HTTPTimeout, settings.CredentialHeaders),
		remote,
		remote,
		a.fingerprinter,
		a.logger,
		loader.WithClock(a.clock),
		loader.WithTracer(tracer),
		loader.WithMetrics(a.metrics),
		loader.WithSerializedKeys(settings.SerializeSameKey),
	)

	p := &page{app: a, loader: ld, settings: settings, opts: opts}

	if opts.Watch {
		return a.watch(ctx, p)
	}

	err = p.run(ctx)
	if opts.Metrics {
		if werr := a.metrics.Write(a.stderr); werr != nil {
			a.logger.Error(werr)
		}
	}
	return err
}

// Clear removes every entry from the cache store.
func (a *App) Clear(_ context.Context, dir string) error {
	settings, err := a.settings(LoadOptions{Dir: dir})
	if err != nil {
		return err
	}
	store, err := kvstore.Open(settings)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return zerr.Wrap(err, "failed to clear cache")
	}
	a.logger.Info("cache cleared")
	return nil
}

// Inspect returns the cache entry stored for a source URL and version.
func (a *App) Inspect(_ context.Context, dir, rawURL, version string) (*domain.CacheEntry, error) {
	settings, err := a.settings(LoadOptions{Dir: dir})
	if err != nil {
		return nil, err
	}

	src, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidSourceURL, err), "url", rawURL)
	}
	req := &domain.LoaderRequest{SourceURL: src, Version: version}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store, err := kvstore.Open(settings)
	if err != nil {
		return nil, err
	}
	entry, err := loader.ReadEntry(store, req.CacheKey())
	if err != nil {
		return nil, err
	}
	if !entry.HasContent() {
		return nil, zerr.With(fmt.Errorf("%w", domain.ErrEntryNotFound), "key", req.CacheKey())
	}
	return entry, nil
}

func (a *App) settings(opts LoadOptions) (*domain.Settings, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get current working directory")
		}
		dir = wd
	}

	settings, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, err
	}
	if opts.Endpoint != "" {
		settings.Endpoint = opts.Endpoint
	}
	if opts.Target != "" {
		settings.Target = opts.Target
	}
	return settings, nil
}

// page is one configured load of a document.
type page struct {
	app      *App
	loader   *loader.Loader
	settings *domain.Settings
	opts     LoadOptions
}

func (p *page) run(ctx context.Context) error {
	a := p.app

	pageURL, err := p.pageURL()
	if err != nil {
		return err
	}
	endpoint, err := url.Parse(p.settings.Endpoint)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err), "endpoint", p.settings.Endpoint)
	}

	reader := &document.Reader{Client: &http.Client{Timeout: p.settings.HTTPTimeout}, Stdin: a.stdin}
	doc, err := reader.Read(ctx, p.opts.Document, pageURL)
	if err != nil {
		return err
	}

	elements := doc.LoaderElements(p.settings.LoaderPath)
	if len(elements) == 0 {
		return zerr.With(fmt.Errorf("%w", domain.ErrNoLoaderElements), "document", p.opts.Document)
	}

	importMap := doc.CollectImportMap(p.baseImportMap(), a.logger)
	resolver := &document.Resolver{
		Endpoint: endpoint,
		Target:   p.settings.Target,
		MaxAge:   p.settings.DefaultMaxAge,
		Logger:   a.logger,
	}
	localDev := p.settings.ResolveLocalDev(doc.PageURL())
	printer := sink.NewWriterSink(a.stdout)

	var mu sync.Mutex
	var errs []error

	g := new(errgroup.Group)
	if p.settings.Parallelism > 0 {
		g.SetLimit(p.settings.Parallelism)
	}
	for _, el := range elements {
		g.Go(func() error {
			err := p.loadElement(ctx, doc, el, resolver, importMap, localDev, printer)
			if err != nil {
				mu.Lock()
				errs = append(errs, zerr.Wrap(err, "failed to load "+el.Label()))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := p.writeDocument(doc); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrLoadFailed}, errs...)...)
	}
	return nil
}

func (p *page) loadElement(
	ctx context.Context,
	doc *document.Document,
	el *document.Element,
	resolver *document.Resolver,
	importMap *domain.ImportMap,
	localDev bool,
	printer ports.ExecutionSink,
) error {
	req, err := resolver.Resolve(doc, el)
	var res *domain.LoadResult
	if err == nil {
		req.NoCache = req.NoCache || p.opts.NoCache
		req.ForceRefresh = req.ForceRefresh || p.opts.Refresh
		req.LocalDev = localDev
		res, err = p.loader.Load(ctx, req, importMap)
	}
	if err != nil {
		doc.ReplaceWithDiagnostic(el, err.Error())
		return err
	}

	if err := p.sinkFor(doc, el, printer).Execute(ctx, res.Module()); err != nil {
		doc.ReplaceWithDiagnostic(el, err.Error())
		return err
	}
	return nil
}

func (p *page) sinkFor(doc *document.Document, el *document.Element, printer ports.ExecutionSink) ports.ExecutionSink {
	switch p.opts.Sink {
	case sink.KindDocument:
		return sink.NewDocumentSink(doc, el)
	case sink.KindPrint:
		return printer
	default:
		return sink.NewRuntimeSink(p.settings.Runtime, p.app.logger, sink.WithOutput(p.app.stdout))
	}
}

func (p *page) pageURL() (*url.URL, error) {
	if p.opts.PageURL == "" {
		return nil, nil
	}
	u, err := url.Parse(p.opts.PageURL)
	if err != nil || !u.IsAbs() {
		return nil, zerr.With(fmt.Errorf("%w: page url must be absolute", domain.ErrInvalidSourceURL), "url", p.opts.PageURL)
	}
	return u, nil
}

// baseImportMap reads the configured import map file. A missing or invalid
// file is reported and ignored.
func (p *page) baseImportMap() *domain.ImportMap {
	if p.settings.ImportMapFile == "" {
		return nil
	}
	data, err := os.ReadFile(p.settings.ImportMapFile)
	if err != nil {
		p.app.logger.Warn(fmt.Sprintf("import map file %s skipped: %v", p.settings.ImportMapFile, err))
		return nil
	}
	m, err := domain.ParseImportMap(data)
	if err != nil {
		p.app.logger.Warn(fmt.Sprintf("import map file %s skipped: %v", p.settings.ImportMapFile, err))
		return nil
	}
	return m
}

// writeDocument writes the rewritten document to the configured output.
// With the document sink and no explicit output it goes to standard output.
func (p *page) writeDocument(doc *document.Document) error {
	out := p.opts.Out
	if out == "" && p.opts.Sink == sink.KindDocument {
		out = StdoutLocation
	}
	switch out {
	case "":
		return nil
	case StdoutLocation:
		return doc.Render(p.app.stdout)
	}

	f, err := os.Create(out)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output file"), "path", out)
	}
	if err := doc.Render(f); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write output file"), "path", out)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output file"), "path", out)
	}
	return nil
}
