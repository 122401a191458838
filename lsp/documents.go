package lsp

import (
	"sync"

	"github.com/LegacyCodeHQ/solls/source"
	"github.com/LegacyCodeHQ/solls/validation"
)

// Documents tracks the open documents and mirrors their text into an
// overlay so imports of open files see unsaved edits.
type Documents struct {
	mu      sync.Mutex
	order   []string
	docs    map[string]validation.Document
	overlay *source.Overlay
}

// NewDocuments returns an empty store backed by overlay.
func NewDocuments(overlay *source.Overlay) *Documents {
	return &Documents{
		docs:    make(map[string]validation.Document),
		overlay: overlay,
	}
}

// Open records a newly opened document.
func (d *Documents) Open(uri, text string) (validation.Document, error) {
	path, err := URIToPath(uri)
	if err != nil {
		return validation.Document{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[uri]; !ok {
		d.order = append(d.order, uri)
	}
	doc := validation.Document{URI: uri, Path: path, Text: text}
	d.docs[uri] = doc
	d.overlay.Set(path, text)
	return doc, nil
}

// Update replaces the text of an open document.
func (d *Documents) Update(uri, text string) (validation.Document, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[uri]
	if !ok {
		return validation.Document{}, false
	}
	doc.Text = text
	d.docs[uri] = doc
	d.overlay.Set(doc.Path, text)
	return doc, true
}

// Get returns an open document.
func (d *Documents) Get(uri string) (validation.Document, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[uri]
	return doc, ok
}

// Close forgets a document.
func (d *Documents) Close(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[uri]
	if !ok {
		return
	}
	delete(d.docs, uri)
	d.overlay.Delete(doc.Path)
	for i, u := range d.order {
		if u == uri {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// All returns the open documents in the order they were opened.
func (d *Documents) All() []validation.Document {
	d.mu.Lock()
	defer d.mu.Unlock()

	docs := make([]validation.Document, 0, len(d.order))
	for _, uri := range d.order {
		docs = append(docs, d.docs[uri])
	}
	return docs
}
