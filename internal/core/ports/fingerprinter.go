package ports

import "go.trai.ch/xs/internal/core/domain"

// Fingerprinter computes content addresses for prebuilt artifacts.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns the lowercase hex digest of the input tuple.
	Fingerprint(in domain.FingerprintInput) string
}
