package storage

import (
	"time"
)

// Subscription records that the user follows a feed. Feed content is never
// stored, only the intent and what the user saw when subscribing.
type Subscription struct {
	URL          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
