package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const hiddenStyle = "display: none;"

// Region is a container element of a Document. Its methods do not lock; call them
// inside Document.Mutate or Document.View.
type Region struct {
	selector string
	sel      *goquery.Selection
}

func (r *Region) Selector() string {
	return r.selector
}

// Empty removes every child node.
func (r *Region) Empty() {
	r.sel.Empty()
}

// AppendHTML parses fragment and appends it as the last children of the region.
// It returns the appended elements.
func (r *Region) AppendHTML(fragment string) *goquery.Selection {
	before := r.sel.Children().Length()
	r.sel.AppendHtml(fragment)
	return r.sel.Children().Slice(before, goquery.ToEnd)
}

// Hide sets display: none on the region.
func (r *Region) Hide() {
	r.sel.SetAttr("style", hiddenStyle)
}

// Reveal drops the inline style set by Hide.
func (r *Region) Reveal() {
	r.sel.RemoveAttr("style")
}

func (r *Region) Visible() bool {
	style, ok := r.sel.Attr("style")
	return !ok || !strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none")
}

// Len counts child elements.
func (r *Region) Len() int {
	return r.sel.Children().Length()
}

func (r *Region) Find(selector string) *goquery.Selection {
	return r.sel.Find(selector)
}

// Contains reports whether sel is the region or lies inside it.
func (r *Region) Contains(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	return r.sel.IsSelection(sel) || sel.ParentsFiltered(r.selector).Length() > 0
}

// SetValue sets the value attribute, as typing into an input would.
func (r *Region) SetValue(value string) {
	r.sel.SetAttr("value", value)
}

func (r *Region) Value() string {
	return r.sel.AttrOr("value", "")
}

func (r *Region) Text() string {
	return r.sel.Text()
}

// HTML serializes the region's children.
func (r *Region) HTML() (string, error) {
	return r.sel.Html()
}
