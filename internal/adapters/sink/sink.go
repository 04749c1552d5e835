// Package sink implements the execution sinks that receive compiled modules.
package sink

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// Kind selects how compiled modules are executed.
type Kind string

const (
	// KindRuntime runs each module with a JavaScript runtime.
	KindRuntime Kind = "runtime"
	// KindDocument injects each module into the rewritten document.
	KindDocument Kind = "document"
	// KindPrint writes each module to standard output.
	KindPrint Kind = "print"
)

// Kinds lists the supported sink kinds.
var Kinds = []Kind{KindRuntime, KindDocument, KindPrint}

// ParseKind validates a sink name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", zerr.With(zerr.New(fmt.Sprintf("unknown sink %q", s)), "expected", "runtime, document or print")
}
