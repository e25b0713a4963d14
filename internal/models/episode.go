package models

import "fmt"

// Episode is a single episode line of a show
type Episode struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Number int    `json:"number"`
}

// EpisodeRecord is a single entry of the catalog's per-show episode response.
type EpisodeRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Number int    `json:"number"`
}

// ToEpisode copies the record fields verbatim.
func (r EpisodeRecord) ToEpisode() Episode {
	return Episode{
		ID:     r.ID,
		Name:   r.Name,
		Season: r.Season,
		Number: r.Number,
	}
}

// ToEpisodes converts records in the order received.
func ToEpisodes(records []EpisodeRecord) []Episode {
	episodes := make([]Episode, 0, len(records))
	for _, r := range records {
		episodes = append(episodes, r.ToEpisode())
	}
	return episodes
}

// Line formats the episode as shown in the episode list.
func (e Episode) Line() string {
	return fmt.Sprintf("%s (Season %d, Episode %d)", e.Name, e.Season, e.Number)
}
