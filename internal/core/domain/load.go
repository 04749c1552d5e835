package domain

import "fmt"

// LoadState is a state of the fetch orchestrator.
type LoadState uint8

const (
	// StateInit validates the request.
	StateInit LoadState = iota
	// StateCacheCheck reads the cache entry.
	StateCacheCheck
	// StateCacheHitFresh serves fresh cached content without network activity.
	StateCacheHitFresh
	// StateRevalidate issues a conditional request for fresh cached content.
	StateRevalidate
	// StateFetchSource fetches raw source unconditionally.
	StateFetchSource
	// StateCompileLookup looks up a prebuilt artifact by fingerprint.
	StateCompileLookup
	// StateCompileRemote posts the source to the transform service.
	StateCompileRemote
	// StatePersist writes the cache entry.
	StatePersist
	// StateDone hands the code to the execution sink.
	StateDone
	// StateFailed terminates the load with an error.
	StateFailed
)

var stateNames = [...]string{
	StateInit:          "INIT",
	StateCacheCheck:    "CACHE_CHECK",
	StateCacheHitFresh: "CACHE_HIT_FRESH",
	StateRevalidate:    "REVALIDATE",
	StateFetchSource:   "FETCH_SOURCE",
	StateCompileLookup: "COMPILE_LOOKUP",
	StateCompileRemote: "COMPILE_REMOTE",
	StatePersist:       "PERSIST",
	StateDone:          "DONE",
	StateFailed:        "FAILED",
}

func (s LoadState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("LoadState(%d)", s)
}

// Origin tells where the code of a load came from.
type Origin string

const (
	// OriginCache is fresh cached content.
	OriginCache Origin = "cache"
	// OriginRevalidated is cached content confirmed by a 304.
	OriginRevalidated Origin = "revalidated"
	// OriginPrebuilt is a prebuilt artifact.
	OriginPrebuilt Origin = "prebuilt"
	// OriginTransform is the output of the transform service.
	OriginTransform Origin = "transform"
	// OriginPassthrough is raw source served unchanged in local development.
	OriginPassthrough Origin = "passthrough"
)

// LoadResult is the outcome of a successful load.
type LoadResult struct {
	Code        string
	SourceURL   string
	Origin      Origin
	Fingerprint string
	// Trail lists the visited states in order.
	Trail []LoadState
}

// Module returns the executable module of the result.
func (r *LoadResult) Module() Module {
	return Module{Code: r.Code, SourceURL: r.SourceURL}
}

// Module is compiled code ready for an execution sink.
type Module struct {
	Code      string
	SourceURL string
}

// Annotated returns the code with a sourceURL comment pointing at the original file.
func (m Module) Annotated() string {
	return m.Code + "\n//# sourceURL=" + m.SourceURL
}
