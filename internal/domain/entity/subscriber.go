package entity

import (
	"strings"
	"time"
)

// Subscriber is an email address that asked to hear about new events.
type Subscriber struct {
	Email       string    `json:"email"`
	DateCreated time.Time `json:"dateCreated"`
}

// Kind implements UniquenessCheckable.
func (s *Subscriber) Kind() EntityKind {
	return EntityKindSubscriber
}

// UniqueKey implements UniquenessCheckable. Subscriber emails compare exactly.
func (s *Subscriber) UniqueKey() string {
	return strings.TrimSpace(s.Email)
}
