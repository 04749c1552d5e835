package sink

import (
	"context"

	"go.trai.ch/xs/internal/adapters/document"
	"go.trai.ch/xs/internal/core/domain"
)

// DocumentSink injects modules into a document in place of their loader element.
type DocumentSink struct {
	doc *document.Document
	el  *document.Element
}

// NewDocumentSink creates a sink replacing el in doc.
func NewDocumentSink(doc *document.Document, el *document.Element) *DocumentSink {
	return &DocumentSink{doc: doc, el: el}
}

// Execute appends the module to the document head and removes the loader element.
func (s *DocumentSink) Execute(_ context.Context, module domain.Module) error {
	s.doc.InjectModule(s.el, module)
	return nil
}
