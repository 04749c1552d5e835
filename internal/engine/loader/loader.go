// Package loader implements the fetch orchestrator: the state machine that
// turns a loader request into compiled code, backed by a best-effort cache.
package loader

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Loader runs loads against a cache store and the remote services.
type Loader struct {
	store         ports.CacheStore
	fetcher       ports.SourceFetcher
	artifacts     ports.ArtifactResolver
	transformer   ports.Transformer
	fingerprinter ports.Fingerprinter
	logger        ports.Logger

	tracer  ports.Tracer
	metrics ports.LoadMetrics
	clock   clockwork.Clock

	serialize bool
	flights   singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock sets the clock used for freshness checks and timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Loader) { l.clock = clock }
}

// WithTracer sets the tracer receiving one span per load and per state.
func WithTracer(tracer ports.Tracer) Option {
	return func(l *Loader) { l.tracer = tracer }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics ports.LoadMetrics) Option {
	return func(l *Loader) { l.metrics = metrics }
}

// WithSerializedKeys coalesces concurrent loads of the same cache key and
// flags into a single run whose result every caller shares.
func WithSerializedKeys(enabled bool) Option {
	return func(l *Loader) { l.serialize = enabled }
}

// New creates a new Loader with the given dependencies.
func New(
	store ports.CacheStore,
	fetcher ports.SourceFetcher,
	artifacts ports.ArtifactResolver,
	transformer ports.Transformer,
	fingerprinter ports.Fingerprinter,
	logger ports.Logger,
	opts ...Option,
) *Loader {
	l := &Loader{
		store:         store,
		fetcher:       fetcher,
		artifacts:     artifacts,
		transformer:   transformer,
		fingerprinter: fingerprinter,
		logger:        logger,
		tracer:        nopTracer{},
		metrics:       nopMetrics{},
		clock:         clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the state machine for req. importMap is shared read-only and may be nil.
// Storage failures never fail a load; every other failure is returned classified
// by the domain sentinels.
func (l *Loader) Load(ctx context.Context, req *domain.LoaderRequest, importMap *domain.ImportMap) (*domain.LoadResult, error) {
	if !l.serialize || req.Validate() != nil {
		return l.load(ctx, req, importMap)
	}

	// The flight is detached from the caller that started it; each caller
	// stops waiting when its own context is done.
	flight := l.flights.DoChan(flightKey(req), func() (any, error) {
		return l.load(context.WithoutCancel(ctx), req, importMap)
	})

	var out singleflight.Result
	select {
	case <-ctx.Done():
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrFetch, context.Cause(ctx)), "url", req.SourceURL.String())
	case out = <-flight:
	}
	if out.Err != nil {
		return nil, out.Err
	}
	res, _ := out.Val.(*domain.LoadResult)
	if out.Shared {
		cp := *res
		cp.Trail = slices.Clone(res.Trail)
		res = &cp
	}
	return res, nil
}

func flightKey(req *domain.LoaderRequest) string {
	return fmt.Sprintf("%s|%t|%t|%t|%t|%t|%d",
		req.CacheKey(), req.NoCache, req.ForceRefresh, req.CheckModified,
		req.UseCredentials, req.LocalDev, req.MaxAge.Milliseconds())
}

// run is the mutable state of a single load.
type run struct {
	req       *domain.LoaderRequest
	importMap *domain.ImportMap

	entry    *domain.CacheEntry
	source   *domain.SourceResponse
	timeOnly bool

	result domain.LoadResult
	err    error
}

func (l *Loader) load(ctx context.Context, req *domain.LoaderRequest, importMap *domain.ImportMap) (*domain.LoadResult, error) {
	start := l.clock.Now()

	ctx, span := l.tracer.Start(ctx, "loader.load")
	defer span.End()

	r := &run{req: req, importMap: importMap}
	if req != nil && req.SourceURL != nil {
		span.SetAttribute("url", req.SourceURL.String())
		r.result.SourceURL = req.SourceURL.String()
	}

	state := domain.StateInit
	for {
		r.result.Trail = append(r.result.Trail, state)
		l.metrics.ObserveState(state)
		if state == domain.StateDone || state == domain.StateFailed {
			break
		}
		state = l.enter(ctx, state, r)
	}

	l.metrics.ObserveLoad(r.result.Origin, domain.Kind(r.err), l.clock.Since(start))
	span.SetAttribute("origin", string(r.result.Origin))

	if r.err != nil {
		span.RecordError(r.err)
		return nil, r.err
	}
	return &r.result, nil
}

// enter runs state inside its own span and returns the next state.
func (l *Loader) enter(ctx context.Context, state domain.LoadState, r *run) domain.LoadState {
	ctx, span := l.tracer.Start(ctx, "loader."+state.String())
	defer span.End()

	var next domain.LoadState
	switch state {
	case domain.StateInit:
		next = l.initialize(r)
	case domain.StateCacheCheck:
		next = l.checkCache(r)
	case domain.StateCacheHitFresh:
		r.result.Code = r.entry.Content
		r.result.Origin = domain.OriginCache
		next = domain.StateDone
	case domain.StateRevalidate:
		next = l.revalidate(ctx, r)
	case domain.StateFetchSource:
		next = l.fetchSource(ctx, r)
	case domain.StateCompileLookup:
		next = l.lookupPrebuilt(ctx, r)
	case domain.StateCompileRemote:
		next = l.compileRemote(ctx, r)
	case domain.StatePersist:
		l.persist(r)
		next = domain.StateDone
	default:
		r.err = zerr.With(zerr.New("unexpected loader state"), "state", state.String())
		next = domain.StateFailed
	}

	if next == domain.StateFailed && r.err != nil {
		span.RecordError(r.err)
	}
	return next
}

func (l *Loader) initialize(r *run) domain.LoadState {
	if err := r.req.Validate(); err != nil {
		r.err = err
		return domain.StateFailed
	}
	if r.req.NoCache || r.req.ForceRefresh {
		return domain.StateFetchSource
	}
	return domain.StateCacheCheck
}

func (l *Loader) checkCache(r *run) domain.LoadState {
	entry, err := ReadEntry(l.store, r.req.CacheKey())
	if err != nil {
		l.info(fmt.Sprintf("cache unavailable, loading %s from network", r.req.SourceURL))
		return domain.StateFetchSource
	}
	if !entry.IsFresh(l.clock.Now(), r.req.MaxAge) {
		if entry.HasContent() {
			l.info(fmt.Sprintf("cache expired for %s", r.req.CacheKey()))
		}
		return domain.StateFetchSource
	}

	r.entry = entry
	if r.req.CheckModified {
		return domain.StateRevalidate
	}
	return domain.StateCacheHitFresh
}

func (l *Loader) revalidate(ctx context.Context, r *run) domain.LoadState {
	resp, err := l.fetcher.Fetch(ctx, domain.SourceRequest{
		URL:             r.req.FetchURL(),
		IfNoneMatch:     r.entry.ETag,
		IfModifiedSince: r.entry.LastModified,
		UseCredentials:  r.req.UseCredentials,
	})
	if err != nil {
		r.err = err
		return domain.StateFailed
	}

	switch {
	case resp.NotModified():
		r.result.Code = r.entry.Content
		r.result.Origin = domain.OriginRevalidated
		r.timeOnly = true
		return domain.StatePersist
	case resp.OK():
		return l.sourceObtained(r, resp)
	default:
		r.err = fetchStatusErr(resp, r.req.FetchURL())
		return domain.StateFailed
	}
}

func (l *Loader) fetchSource(ctx context.Context, r *run) domain.LoadState {
	resp, err := l.fetcher.Fetch(ctx, domain.SourceRequest{
		URL:            r.req.FetchURL(),
		Reload:         r.req.ForceRefresh,
		UseCredentials: r.req.UseCredentials,
	})
	if err != nil {
		r.err = err
		return domain.StateFailed
	}
	if !resp.OK() {
		r.err = fetchStatusErr(resp, r.req.FetchURL())
		return domain.StateFailed
	}
	return l.sourceObtained(r, resp)
}

// sourceObtained records fresh source and picks the compile path.
func (l *Loader) sourceObtained(r *run, resp *domain.SourceResponse) domain.LoadState {
	r.source = resp

	if r.req.LocalDev {
		l.warn(fmt.Sprintf("local development: serving %s without compilation, use `npx esm.sh serve` instead", r.req.SourceURL))
		r.result.Code = resp.Body
		r.result.Origin = domain.OriginPassthrough
		return domain.StatePersist
	}

	r.result.Fingerprint = l.fingerprinter.Fingerprint(domain.FingerprintInput{
		Language:  r.req.Language,
		Source:    resp.Body,
		Target:    r.req.Target,
		ImportMap: r.importMap.CanonicalJSON(),
		Minify:    true,
	})
	return domain.StateCompileLookup
}

func (l *Loader) lookupPrebuilt(ctx context.Context, r *run) domain.LoadState {
	code, found, err := l.artifacts.Lookup(ctx, r.req.Endpoint, r.result.Fingerprint, r.req.ForceRefresh)
	if err != nil {
		l.info(fmt.Sprintf("prebuilt lookup for %s failed, compiling remotely", r.req.SourceURL))
		return domain.StateCompileRemote
	}
	if !found {
		return domain.StateCompileRemote
	}

	r.result.Code = code
	r.result.Origin = domain.OriginPrebuilt
	return domain.StatePersist
}

func (l *Loader) compileRemote(ctx context.Context, r *run) domain.LoadState {
	code, err := l.transformer.Transform(ctx, r.req.Endpoint, domain.TransformRequest{
		Filename:  r.req.SourceURL.String(),
		Lang:      r.req.Language,
		Code:      r.source.Body,
		Target:    r.req.Target,
		ImportMap: r.importMap.CanonicalJSON(),
		Minify:    true,
	})
	if err != nil {
		r.err = err
		return domain.StateFailed
	}

	r.result.Code = code
	r.result.Origin = domain.OriginTransform
	return domain.StatePersist
}

// persist writes the entry and absorbs every storage failure.
func (l *Loader) persist(r *run) {
	key := r.req.CacheKey()
	now := l.clock.Now()

	var err error
	if r.timeOnly {
		err = WriteTime(l.store, key, now)
	} else {
		err = WriteEntry(l.store, key, &domain.CacheEntry{
			SourceURL:    r.req.SourceURL.String(),
			Content:      r.result.Code,
			FetchedAt:    now,
			ETag:         r.source.ETag,
			LastModified: r.source.LastModified,
		})
	}
	if err != nil {
		l.metrics.ObservePersistFailure()
		l.info(fmt.Sprintf("cache write skipped for %s", key))
	}
}

func fetchStatusErr(resp *domain.SourceResponse, target string) error {
	status := resp.Status
	if status == "" {
		status = strconv.Itoa(resp.StatusCode)
	}
	return zerr.With(zerr.With(fmt.Errorf("%w: %s", domain.ErrFetch, status), "url", target), "status", resp.StatusCode)
}

func (l *Loader) info(msg string) {
	if l.logger != nil {
		l.logger.Info(domain.DiagnosticPrefix + " " + msg)
	}
}

func (l *Loader) warn(msg string) {
	if l.logger != nil {
		l.logger.Warn(domain.DiagnosticPrefix + " " + msg)
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveState(domain.LoadState)                    {}
func (nopMetrics) ObserveLoad(domain.Origin, string, time.Duration) {}
func (nopMetrics) ObservePersistFailure()                           {}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End()                     {}
func (nopSpan) RecordError(error)        {}
func (nopSpan) SetAttribute(string, any) {}
