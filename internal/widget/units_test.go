package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Belphemur/ShowFinder/internal/dom"
	"github.com/Belphemur/ShowFinder/internal/models"
)

const unitsPage = `<html><body><div id="shows"><p>old</p></div><ul id="episodes" style="display: none"></ul></body></html>`

func newUnitRegions(t *testing.T) (*dom.Document, *dom.Region, *dom.Region) {
	t.Helper()
	doc, err := dom.ParseString(unitsPage)
	require.NoError(t, err)
	shows, err := doc.Region("#shows")
	require.NoError(t, err)
	episodes, err := doc.Region("#episodes")
	require.NoError(t, err)
	return doc, shows, episodes
}

func TestShowSearch_Render(t *testing.T) {
	doc, shows, episodes := newUnitRegions(t)
	search := NewShowSearch(nil, doc, shows, episodes, "")

	search.Render([]models.Show{
		{ID: 3, Name: "Alpha", Summary: "<p>first</p>", Image: "https://img.example/a.jpg"},
		{ID: 8, Name: "Beta & Co", Image: "https://img.example/b.jpg"},
	})

	html, err := shows.HTML()
	require.NoError(t, err)
	assert.NotContains(t, html, "old")
	assert.Contains(t, html, "<p>first</p>")
	assert.Contains(t, html, "Beta &amp; Co")
	assert.Equal(t, 2, shows.Len())

	var ids []int
	doc.View(func() {
		for _, key := range []string{"show-card-1", "show-card-2"} {
			id, ok := search.showIDFor(key)
			require.True(t, ok, key)
			ids = append(ids, id)
		}
	})
	assert.Equal(t, []int{3, 8}, ids)
}

func TestShowSearch_RenderNeverReusesControlKeys(t *testing.T) {
	doc, shows, episodes := newUnitRegions(t)
	search := NewShowSearch(nil, doc, shows, episodes, "")

	search.Render([]models.Show{{ID: 1, Name: "One"}})
	search.Render([]models.Show{{ID: 2, Name: "Two"}})

	doc.View(func() {
		_, ok := search.showIDFor("show-card-1")
		assert.False(t, ok)
		id, ok := search.showIDFor("show-card-2")
		assert.True(t, ok)
		assert.Equal(t, 2, id)
	})
}

func TestEpisodeListing_Render(t *testing.T) {
	doc, _, episodes := newUnitRegions(t)
	listing := NewEpisodeListing(nil, doc, episodes)

	listing.Render([]models.Episode{
		{ID: 1, Name: "Pilot", Season: 1, Number: 1},
		{ID: 2, Name: "A <b> side", Season: 2, Number: 10},
	})

	html, err := episodes.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<li>Pilot (Season 1, Episode 1)</li><li>A &lt;b&gt; side (Season 2, Episode 10)</li>", html)
	assert.False(t, episodes.Visible(), "rendering does not reveal the region")

	listing.Render(nil)
	assert.Equal(t, 0, episodes.Len())
}
