package entity

import "time"

// Photo is an image attached to an event. At most one photo per event is main.
type Photo struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"eventId"`
	FileName    string    `json:"fileName"` // Public URI returned by the media host.
	IsMain      bool      `json:"isMain"`
	PublicID    string    `json:"publicId,omitempty"` // Media host identifier; empty when nothing is hosted remotely.
	DateCreated time.Time `json:"dateCreated"`
}

// IsHostedRemotely reports whether deleting the photo requires a media host call.
func (p *Photo) IsHostedRemotely() bool {
	return p.PublicID != ""
}
