package models

// Show represents a TV show as rendered on a show card
type Show struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"` // HTML fragment as provided by the catalog
	Image   string `json:"image"`
}

// ShowRecord is a single entry of the catalog's search response.
type ShowRecord struct {
	Show struct {
		ID      int        `json:"id"`
		Name    string     `json:"name"`
		Summary string     `json:"summary"`
		Image   *ImageURLs `json:"image"`
	} `json:"show"`
}

// ImageURLs holds the artwork sizes published for a show. Either size may be null.
type ImageURLs struct {
	Medium   *string `json:"medium"`
	Original *string `json:"original"`
}

// ToShow normalizes the record. The medium image is used when present and non-empty,
// otherwise defaultImage.
func (r ShowRecord) ToShow(defaultImage string) Show {
	image := defaultImage
	if r.Show.Image != nil && r.Show.Image.Medium != nil && *r.Show.Image.Medium != "" {
		image = *r.Show.Image.Medium
	}
	return Show{
		ID:      r.Show.ID,
		Name:    r.Show.Name,
		Summary: r.Show.Summary,
		Image:   image,
	}
}

// ToShows normalizes records, preserving count and order.
func ToShows(records []ShowRecord, defaultImage string) []Show {
	shows := make([]Show, 0, len(records))
	for _, r := range records {
		shows = append(shows, r.ToShow(defaultImage))
	}
	return shows
}
