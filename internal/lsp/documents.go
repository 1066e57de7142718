package lsp

import "sync"

// documents holds the text of open buffers keyed by URI.
type documents struct {
	mu   sync.Mutex
	text map[string]string
}

func newDocuments() *documents {
	return &documents{text: make(map[string]string)}
}

func (d *documents) set(uri, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text[uri] = text
}

func (d *documents) get(uri string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.text[uri]
	return text, ok
}

func (d *documents) remove(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.text, uri)
}

func (d *documents) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.text)
}
