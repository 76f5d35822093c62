package entity

import "time"

// Event is a published happening that owns a gallery of photos.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Details     string    `json:"details"`
	DateCreated time.Time `json:"dateCreated"`
	Images      []*Photo  `json:"images"`
}

// MainPhoto returns the photo flagged as main, or nil when none is set.
func (e *Event) MainPhoto() *Photo {
	for _, p := range e.Images {
		if p.IsMain {
			return p
		}
	}

	return nil
}
