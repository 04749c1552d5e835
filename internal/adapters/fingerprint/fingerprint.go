// Package fingerprint computes the content addresses of prebuilt artifacts.
package fingerprint

import (
	"crypto/sha1" //nolint:gosec // the artifact endpoint is addressed by SHA-1
	"encoding/hex"
	"io"
	"strconv"

	"go.trai.ch/xs/internal/core/domain"
)

// Fingerprinter implements ports.Fingerprinter.
type Fingerprinter struct{}

// New creates a Fingerprinter.
func New() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint returns the lowercase hex SHA-1 of
// language + source + target + import map JSON + minify flag.
func (f *Fingerprinter) Fingerprint(in domain.FingerprintInput) string {
	h := sha1.New() //nolint:gosec // not used for security
	_, _ = io.WriteString(h, string(in.Language))
	_, _ = io.WriteString(h, in.Source)
	_, _ = io.WriteString(h, in.Target)
	_, _ = h.Write(in.ImportMap)
	_, _ = io.WriteString(h, strconv.FormatBool(in.Minify))
	return hex.EncodeToString(h.Sum(nil))
}

// PrebuiltPath returns the endpoint path of the prebuilt artifact for fp.
func PrebuiltPath(fp string) string {
	return "/+" + fp + ".mjs"
}
