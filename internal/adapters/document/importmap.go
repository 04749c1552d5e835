package document

import (
	"fmt"

	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
)

// CollectImportMap returns the last import map declaration of the document that parses.
// Declarations are not merged. Failing declarations are logged and skipped.
// base is returned when no declaration parses; it may be nil.
func (d *Document) CollectImportMap(base *domain.ImportMap, logger ports.Logger) *domain.ImportMap {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := base
	index := 0
	for n := range d.root.Descendants() {
		if !isScript(n) || scriptType(n) != "importmap" {
			continue
		}
		index++

		content := textContent(n)
		if content == "" {
			continue
		}
		m, err := domain.ParseImportMap([]byte(content))
		if err != nil {
			logger.Warn(fmt.Sprintf("%s skipping import map #%d: %v", domain.DiagnosticPrefix, index, err))
			continue
		}
		result = m
	}

	if result == nil {
		return &domain.ImportMap{}
	}
	return result
}
