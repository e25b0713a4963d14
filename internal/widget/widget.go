// Package widget implements the show search page: a search form that lists matching
// shows as cards, and per-card "Episodes" controls that list a show's episodes.
package widget

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/dom"
	"github.com/Belphemur/ShowFinder/internal/models"
)

//go:embed page.html
var pageHTML string

// Region selectors of the page.
const (
	SearchFormSelector = "#searchForm"
	TermSelector       = "#searchForm-term"
	ShowsSelector      = "#showsList"
	EpisodesSelector   = "#episodesArea"
	StatusSelector     = "#statusArea"
)

// ErrSuperseded reports that a response was discarded because a newer request of the
// same unit had been issued. The page reflects the newer request.
var ErrSuperseded = errors.New("response superseded by a newer request")

const (
	remoteFailureMessage  = "Could not reach the show catalog. Please try again."
	unknownControlMessage = "That show is no longer listed. Search again to see its episodes."
)

// Catalog is everything the widget needs from the show catalog.
type Catalog interface {
	ShowSearcher
	EpisodeLister
}

// Card describes a rendered show card.
type Card struct {
	ControlKey string
	ShowID     int
	Name       string
}

// Widget is one user's page: the document, its regions and the two units.
type Widget struct {
	doc      *dom.Document
	term     *dom.Region
	status   *dom.Region
	shows    *dom.Region
	episodes *dom.Region

	search  *ShowSearch
	listing *EpisodeListing
}

// New builds a widget on a fresh copy of the page.
func New(catalog Catalog, defaultImage string) (*Widget, error) {
	doc, err := dom.ParseString(pageHTML)
	if err != nil {
		return nil, err
	}
	return NewWithDocument(catalog, doc, defaultImage)
}

// NewWithDocument builds a widget on doc, which must contain every region selector.
func NewWithDocument(catalog Catalog, doc *dom.Document, defaultImage string) (*Widget, error) {
	regions := make(map[string]*dom.Region)
	for _, selector := range []string{TermSelector, StatusSelector, ShowsSelector, EpisodesSelector} {
		region, err := doc.Region(selector)
		if err != nil {
			return nil, fmt.Errorf("page is missing a widget region: %w", err)
		}
		regions[selector] = region
	}

	w := &Widget{
		doc:      doc,
		term:     regions[TermSelector],
		status:   regions[StatusSelector],
		shows:    regions[ShowsSelector],
		episodes: regions[EpisodesSelector],
	}
	w.search = NewShowSearch(catalog, doc, w.shows, w.episodes, defaultImage)
	w.listing = NewEpisodeListing(catalog, doc, w.episodes)
	w.search.OnShowsReplaced = w.listing.Supersede
	return w, nil
}

// Submit handles the search form submission for term. Failures are shown in the
// status region and returned.
func (w *Widget) Submit(ctx context.Context, term string) error {
	w.doc.Mutate(func() { w.term.SetValue(term) })

	err := w.search.HandleSubmit(ctx, term)
	w.showOutcome(err)
	return err
}

// Click handles activation of the episodes control identified by controlKey. The
// control must belong to a card currently in the shows region.
func (w *Widget) Click(ctx context.Context, controlKey string) error {
	var (
		showID int
		found  bool
	)
	w.doc.View(func() {
		control := w.findControl(controlKey)
		if !w.shows.Contains(control) {
			return
		}
		showID, found = w.search.showIDFor(controlKey)
	})
	if !found {
		err := &apperrors.ErrUnknownControl{Key: controlKey}
		w.showOutcome(err)
		return err
	}

	err := w.listing.HandleEpisodesClick(ctx, showID)
	w.showOutcome(err)
	return err
}

func (w *Widget) findControl(key string) *goquery.Selection {
	return w.shows.Find("." + EpisodesControlClass).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("value", "") == key
	})
}

// showOutcome updates the status region. Superseded responses leave it to the newer request.
func (w *Widget) showOutcome(err error) {
	if errors.Is(err, ErrSuperseded) {
		return
	}

	w.doc.Mutate(func() {
		w.status.Empty()
		switch {
		case err == nil:
		case errors.Is(err, &apperrors.ErrUnknownControl{}):
			w.status.AppendHTML(alertHTML(unknownControlMessage))
		default:
			w.status.AppendHTML(alertHTML(remoteFailureMessage))
		}
	})
}

func alertHTML(message string) string {
	return `<div class="alert alert-danger">` + dom.Escape(message) + `</div>`
}

// Search exposes the Show Search Unit.
func (w *Widget) Search() *ShowSearch {
	return w.search
}

// Episodes exposes the Episode Listing Unit.
func (w *Widget) Episodes() *EpisodeListing {
	return w.listing
}

// HTML serializes the full page.
func (w *Widget) HTML() (string, error) {
	return w.doc.HTML()
}

// ShowsHTML serializes the shows region.
func (w *Widget) ShowsHTML() (string, error) {
	var (
		out string
		err error
	)
	w.doc.View(func() { out, err = w.shows.HTML() })
	return out, err
}

// EpisodesHTML serializes the episodes region.
func (w *Widget) EpisodesHTML() (string, error) {
	var (
		out string
		err error
	)
	w.doc.View(func() { out, err = w.episodes.HTML() })
	return out, err
}

// EpisodesVisible reports whether the episodes region is shown.
func (w *Widget) EpisodesVisible() bool {
	var visible bool
	w.doc.View(func() { visible = w.episodes.Visible() })
	return visible
}

// EpisodeLines returns the text of each episode line, in display order.
func (w *Widget) EpisodeLines() []string {
	var lines []string
	w.doc.View(func() {
		w.episodes.Find("li").Each(func(_ int, s *goquery.Selection) {
			lines = append(lines, s.Text())
		})
	})
	return lines
}

// Cards lists the rendered show cards, in display order.
func (w *Widget) Cards() []Card {
	var cards []Card
	w.doc.View(func() {
		w.shows.Find("." + EpisodesControlClass).Each(func(_ int, s *goquery.Selection) {
			key := s.AttrOr("value", "")
			id, _ := w.search.showIDFor(key)
			cards = append(cards, Card{
				ControlKey: key,
				ShowID:     id,
				Name:       strings.TrimSpace(s.Closest(".Show").Find("h5").Text()),
			})
		})
	})
	return cards
}

// Status returns the text of the status region, empty when the last action succeeded.
func (w *Widget) Status() string {
	var text string
	w.doc.View(func() { text = strings.TrimSpace(w.status.Text()) })
	return text
}

// Term returns the last submitted search term.
func (w *Widget) Term() string {
	var term string
	w.doc.View(func() { term = w.term.Value() })
	return term
}

// ShowsFor runs a search without touching the page.
func (w *Widget) ShowsFor(ctx context.Context, term string) ([]models.Show, error) {
	return w.search.Search(ctx, term)
}

// EpisodesFor fetches episodes without touching the page.
func (w *Widget) EpisodesFor(ctx context.Context, showID int) ([]models.Episode, error) {
	return w.listing.FetchEpisodes(ctx, showID)
}
