package source

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Overlay holds the text of documents that are open in the editor. Buffers
// live in an in-memory layer over a read-only base filesystem; reads of an
// open document return the buffer and everything else falls through to the
// base.
type Overlay struct {
	layer afero.Fs
	union afero.Fs
}

// NewOverlay creates an overlay on top of base. A nil base reads from disk.
func NewOverlay(base afero.Fs) *Overlay {
	if base == nil {
		base = afero.NewOsFs()
	}
	layer := afero.NewMemMapFs()
	return &Overlay{
		layer: layer,
		union: afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(base), layer),
	}
}

// Set stores the buffer for path, replacing any previous text.
func (o *Overlay) Set(path string, text string) {
	path = filepath.Clean(path)
	_ = o.layer.MkdirAll(filepath.Dir(path), 0o755)
	_ = afero.WriteFile(o.layer, path, []byte(text), 0o644)
}

// Delete forgets the buffer for path.
func (o *Overlay) Delete(path string) {
	_ = o.layer.Remove(filepath.Clean(path))
}

// Get returns the buffer for path if the document is open.
func (o *Overlay) Get(path string) (string, bool) {
	content, err := afero.ReadFile(o.layer, filepath.Clean(path))
	if err != nil {
		return "", false
	}
	return string(content), true
}

// Read implements ContentReader.
func (o *Overlay) Read(path string) ([]byte, error) {
	return afero.ReadFile(o.union, filepath.Clean(path))
}

// Reader returns the overlay as a ContentReader.
func (o *Overlay) Reader() ContentReader {
	return o.Read
}
