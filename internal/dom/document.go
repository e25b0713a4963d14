// Package dom holds an HTML page in memory and exposes its display regions as
// handles that can be emptied, appended to, hidden and revealed.
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page. All reads and writes of its regions go through
// Mutate or View so concurrent handlers never observe a half-rendered region.
type Document struct {
	mu  sync.RWMutex
	doc *goquery.Document
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page string) (*Document, error) {
	return Parse(strings.NewReader(page))
}

// Region returns a handle to the single element matching selector.
func (d *Document) Region(selector string) (*Region, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sel := d.doc.Find(selector)
	if sel.Length() != 1 {
		return nil, fmt.Errorf("region %q: expected exactly one element, found %d", selector, sel.Length())
	}
	return &Region{selector: selector, sel: sel}, nil
}

// Mutate runs fn with exclusive access to the document.
func (d *Document) Mutate(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// View runs fn with shared read access to the document.
func (d *Document) View(fn func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

// HTML serializes the whole page, doctype included.
func (d *Document) HTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var b strings.Builder
	for _, n := range d.doc.Nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("failed to render page: %w", err)
		}
	}
	return b.String(), nil
}

// Escape makes text safe for element content and quoted attribute values.
func Escape(text string) string {
	return html.EscapeString(text)
}
