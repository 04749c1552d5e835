// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/xs/internal/adapters/config"
	_ "go.trai.ch/xs/internal/adapters/fingerprint"
	_ "go.trai.ch/xs/internal/adapters/logger"
	_ "go.trai.ch/xs/internal/adapters/metrics"
	// Register app nodes.
	_ "go.trai.ch/xs/internal/app"
)
