package model

import "time"

// Link is a stored mapping from a short code to the original URL.
type Link struct {
	Code        string
	OriginalURL string
	CreatedAt   time.Time
	Clicks      int
}

// LinkRecord is a single line of the file storage journal.
type LinkRecord struct {
	UUID        string    `json:"uuid"`
	Kind        string    `json:"kind"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	Clicks      int       `json:"clicks,omitempty"`
}

// Journal record kinds.
const (
	RecordCreate = "create"
	RecordClicks = "clicks"
)

// StatsResponse is the public view of a link's statistics.
type StatsResponse struct {
	OriginalURL string `json:"original_url"`
	ShortCode   string `json:"short_code"`
	Clicks      int    `json:"clicks"`
	CreatedAt   string `json:"created_at"`
}
